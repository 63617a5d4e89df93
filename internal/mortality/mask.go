package mortality

import (
	"math/rand"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// GenerateAliveMask simulates survival for one person across all paths.
// The mask has years+1 columns; column 0 is always true (alive today) and
// death is absorbing. mask[p][y] reports whether path p is alive at the
// start of year y.
func GenerateAliveMask(tbl Table, paths, years, startAge int, gender domain.Gender, rng *rand.Rand) [][]bool {
	mask := make([][]bool, paths)
	for i := range mask {
		mask[i] = make([]bool, years+1)
		mask[i][0] = true
		for y := 0; y < years; y++ {
			if !mask[i][y] {
				break
			}
			q := tbl.DeathProbability(startAge+y, gender)
			mask[i][y+1] = rng.Float64() >= q
		}
	}
	return mask
}

// GenerateJointAliveMask simulates survival for a couple. Deaths are drawn
// independently. The either mask is the element-wise OR of the two, used
// to keep a path active while anyone still needs income.
func GenerateJointAliveMask(tbl Table, paths, years, primaryAge int, primaryGender domain.Gender, spouseAge int, spouseGender domain.Gender, rng *rand.Rand) (primary, spouse, either [][]bool) {
	primary = GenerateAliveMask(tbl, paths, years, primaryAge, primaryGender, rng)
	spouse = GenerateAliveMask(tbl, paths, years, spouseAge, spouseGender, rng)
	either = make([][]bool, paths)
	for i := range either {
		either[i] = make([]bool, years+1)
		for y := 0; y <= years; y++ {
			either[i][y] = primary[i][y] || spouse[i][y]
		}
	}
	return primary, spouse, either
}
