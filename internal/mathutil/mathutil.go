package mathutil

import "math"

// PoissonPMF calculates P(X = k) for a Poisson distribution with mean λ.
// λ = 0 is a point mass at zero.
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 || lambda < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	// P(X=k) = e^(-λ) * λ^k / k!, in log space to avoid overflow
	logProb := -lambda + float64(k)*math.Log(lambda) - LogFactorial(k)
	return math.Exp(logProb)
}

// LogFactorial returns ln(n!).
func LogFactorial(n int) float64 {
	if n <= 1 {
		return 0
	}
	result := 0.0
	for i := 2; i <= n; i++ {
		result += math.Log(float64(i))
	}
	return result
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
