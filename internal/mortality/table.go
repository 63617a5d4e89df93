// Package mortality provides annual death probabilities and the alive
// masks used to credit death as a non-failure simulation outcome.
package mortality

import "github.com/finsim/retirement-simulator/internal/domain"

// Table yields the probability of dying within one year at a given age.
type Table interface {
	DeathProbability(age int, gender domain.Gender) float64
}

// Period life table probabilities by single year of age, 0-119, fit to
// SSA-style actuarial data. Ages at or beyond the table end are certain
// deaths for simulation purposes.
var maleQx = []float64{
	0.006840, 0.002708, 0.001335, 0.000882, 0.000734, 0.000689, 0.000678, 0.000680,
	0.000685, 0.000693, 0.000701, 0.000711, 0.000722, 0.000734, 0.000747, 0.000761,
	0.000777, 0.000794, 0.000813, 0.000834, 0.000857, 0.000882, 0.000909, 0.000940,
	0.000973, 0.001009, 0.001049, 0.001093, 0.001141, 0.001193, 0.001251, 0.001315,
	0.001384, 0.001461, 0.001545, 0.001637, 0.001738, 0.001849, 0.001970, 0.002104,
	0.002251, 0.002411, 0.002588, 0.002782, 0.002994, 0.003228, 0.003484, 0.003765,
	0.004073, 0.004412, 0.004783, 0.005191, 0.005639, 0.006130, 0.006669, 0.007260,
	0.007909, 0.008621, 0.009403, 0.010261, 0.011203, 0.012236, 0.013370, 0.014615,
	0.015981, 0.017480, 0.019125, 0.020931, 0.022912, 0.025087, 0.027473, 0.030092,
	0.032967, 0.036121, 0.039583, 0.043382, 0.047552, 0.052128, 0.057150, 0.062661,
	0.068710, 0.075348, 0.082633, 0.090628, 0.099403, 0.109032, 0.119600, 0.131198,
	0.143926, 0.157895, 0.173225, 0.190050, 0.208514, 0.228778, 0.251016, 0.275422,
	0.302207, 0.331602, 0.363862, 0.399266, 0.438121, 0.480762, 0.527560, 0.578918,
	0.635282, 0.697139, 0.765025, 0.839527, 0.921291, 0.950000, 0.950000, 0.950000,
	0.950000, 0.950000, 0.950000, 0.950000, 0.950000, 0.950000, 0.950000, 0.950000,
}

var femaleQx = []float64{
	0.005516, 0.002115, 0.000985, 0.000610, 0.000486, 0.000447, 0.000436, 0.000434,
	0.000436, 0.000439, 0.000443, 0.000447, 0.000452, 0.000457, 0.000463, 0.000470,
	0.000477, 0.000485, 0.000493, 0.000503, 0.000514, 0.000525, 0.000538, 0.000552,
	0.000568, 0.000585, 0.000605, 0.000626, 0.000649, 0.000674, 0.000703, 0.000734,
	0.000768, 0.000806, 0.000848, 0.000894, 0.000945, 0.001001, 0.001063, 0.001131,
	0.001206, 0.001289, 0.001381, 0.001482, 0.001593, 0.001716, 0.001852, 0.002001,
	0.002166, 0.002348, 0.002549, 0.002770, 0.003014, 0.003283, 0.003580, 0.003907,
	0.004268, 0.004667, 0.005106, 0.005591, 0.006125, 0.006714, 0.007365, 0.008082,
	0.008873, 0.009745, 0.010707, 0.011768, 0.012939, 0.014230, 0.015654, 0.017224,
	0.018957, 0.020867, 0.022975, 0.025299, 0.027863, 0.030690, 0.033809, 0.037249,
	0.041043, 0.045228, 0.049844, 0.054934, 0.060550, 0.066743, 0.073574, 0.081108,
	0.089418, 0.098583, 0.108692, 0.119842, 0.132140, 0.145705, 0.160666, 0.177167,
	0.195368, 0.215442, 0.237583, 0.262004, 0.288940, 0.318649, 0.351417, 0.387558,
	0.427421, 0.471388, 0.519883, 0.573370, 0.632365, 0.697433, 0.769202, 0.848360,
	0.935668, 0.950000, 0.950000, 0.950000, 0.950000, 0.950000, 0.950000, 0.950000,
}

// DefaultTable is the embedded period life table.
type DefaultTable struct{}

// NewDefaultTable returns the embedded table. It carries no state and is
// safe to share.
func NewDefaultTable() DefaultTable { return DefaultTable{} }

// DeathProbability returns the annual death probability for the given age
// and gender. Negative ages behave like age 0; ages past the table end
// return 1.
func (DefaultTable) DeathProbability(age int, gender domain.Gender) float64 {
	qx := maleQx
	if gender == domain.Female {
		qx = femaleQx
	}
	if age < 0 {
		age = 0
	}
	if age >= len(qx) {
		return 1.0
	}
	return qx[age]
}
