package mortality

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsim/retirement-simulator/internal/domain"
)

func TestDeathProbabilityBounds(t *testing.T) {
	tbl := NewDefaultTable()
	for age := 0; age < 120; age++ {
		for _, g := range []domain.Gender{domain.Male, domain.Female} {
			q := tbl.DeathProbability(age, g)
			assert.Greater(t, q, 0.0, "age %d", age)
			assert.LessOrEqual(t, q, 0.95, "age %d", age)
		}
	}
}

func TestDeathProbabilityCertainBeyondTable(t *testing.T) {
	tbl := NewDefaultTable()
	assert.Equal(t, 1.0, tbl.DeathProbability(120, domain.Male))
	assert.Equal(t, 1.0, tbl.DeathProbability(130, domain.Female))
}

func TestDeathProbabilityRisesWithAdultAge(t *testing.T) {
	tbl := NewDefaultTable()
	for _, g := range []domain.Gender{domain.Male, domain.Female} {
		prev := tbl.DeathProbability(30, g)
		for age := 31; age < 110; age++ {
			q := tbl.DeathProbability(age, g)
			assert.GreaterOrEqual(t, q, prev, "age %d", age)
			prev = q
		}
	}
}

func TestFemaleMortalityLowerInAdulthood(t *testing.T) {
	tbl := NewDefaultTable()
	for age := 30; age <= 90; age += 10 {
		assert.Less(t,
			tbl.DeathProbability(age, domain.Female),
			tbl.DeathProbability(age, domain.Male),
			"age %d", age)
	}
}

func TestAliveMaskStartsAliveAndIsAbsorbing(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	mask := GenerateAliveMask(NewDefaultTable(), 500, 40, 60, domain.Male, rng)

	require.Len(t, mask, 500)
	for _, row := range mask {
		require.Len(t, row, 41)
		assert.True(t, row[0])
		dead := false
		for _, alive := range row {
			if dead {
				assert.False(t, alive)
			}
			if !alive {
				dead = true
			}
		}
	}
}

func TestAliveMaskNobodySurvivesPastTable(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	// From 100 to 140: everyone is gone well before the horizon.
	mask := GenerateAliveMask(NewDefaultTable(), 200, 40, 100, domain.Female, rng)
	for _, row := range mask {
		assert.False(t, row[40])
	}
}

func TestAliveMaskMostSurviveOneYearAtSixty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	mask := GenerateAliveMask(NewDefaultTable(), 2000, 1, 60, domain.Female, rng)

	alive := 0
	for _, row := range mask {
		if row[1] {
			alive++
		}
	}
	// qx at 60 is well under 1%, so nearly everyone makes it.
	assert.Greater(t, float64(alive)/2000, 0.98)
}

func TestJointAliveMaskIsElementwiseOr(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	primary, spouse, either := GenerateJointAliveMask(
		NewDefaultTable(), 300, 35, 65, domain.Male, 62, domain.Female, rng)

	require.Len(t, either, 300)
	for i := range either {
		for y := range either[i] {
			assert.Equal(t, primary[i][y] || spouse[i][y], either[i][y])
		}
	}
}
