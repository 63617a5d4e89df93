package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRMDBeforeStartAge(t *testing.T) {
	assert.Zero(t, RMD(500000, 72))
	assert.Zero(t, RMD(500000, 50))
}

func TestRMDZeroForNonPositiveBalance(t *testing.T) {
	assert.Zero(t, RMD(0, 75))
	assert.Zero(t, RMD(-1000, 80))
}

func TestRMDAtStartAge(t *testing.T) {
	// 500000 / 26.5
	assert.InDelta(t, 18867.92, RMD(500000, 73), 0.01)
}

func TestRMDUsesTableDivisors(t *testing.T) {
	assert.InDelta(t, 500000/24.6, RMD(500000, 75), 0.001)
	assert.InDelta(t, 500000/12.2, RMD(500000, 90), 0.001)
	assert.InDelta(t, 500000/2.0, RMD(500000, 120), 0.001)
}

func TestRMDClampsBeyondTable(t *testing.T) {
	assert.Equal(t, RMD(500000, 120), RMD(500000, 125))
}

func TestDistributionPeriodClampsBelowTable(t *testing.T) {
	assert.Equal(t, 27.4, DistributionPeriod(72))
	assert.Equal(t, 27.4, DistributionPeriod(70))
	assert.Equal(t, 27.4, DistributionPeriod(0))
	assert.Equal(t, 2.0, DistributionPeriod(130))
}

func TestRMDIncreasesWithAge(t *testing.T) {
	prev := 0.0
	for age := 73; age <= 120; age++ {
		cur := RMD(100000, age)
		assert.Greater(t, cur, prev, "RMD at age %d should exceed age %d", age, age-1)
		prev = cur
	}
}

func TestRMDBatch(t *testing.T) {
	out := RMDBatch([]float64{500000, 0, -5, 100000}, 73)
	assert.InDelta(t, 18867.92, out[0], 0.01)
	assert.Zero(t, out[1])
	assert.Zero(t, out[2])
	assert.InDelta(t, 100000/26.5, out[3], 0.001)

	under := RMDBatch([]float64{500000}, 60)
	assert.Zero(t, under[0])
}
