package hmm

import "math"

var negInf = math.Inf(-1)

// log2Prob is log2(p) with p == 0 mapped to -Inf explicitly. Negative and NaN
// probabilities are programming errors.
func log2Prob(p float64) float64 {
	if p == 0 {
		return negInf
	}
	if !(p > 0) {
		panic("hmm: log of negative or NaN probability")
	}
	return math.Log2(p)
}

// logAdd returns log2(2^a + 2^b). -Inf operands drop out so a zero
// probability never disturbs the running sum.
func logAdd(a, b float64) float64 {
	if math.IsInf(b, -1) {
		return a
	}
	if math.IsInf(a, -1) {
		return b
	}
	if a < b {
		a, b = b, a
	}
	return a + math.Log1p(math.Exp2(b-a))/math.Ln2
}

// logSum folds logAdd over xs. The empty sum is -Inf.
func logSum(xs []float64) float64 {
	acc := negInf
	for _, x := range xs {
		acc = logAdd(acc, x)
	}
	return acc
}
