package leveling

import (
	"math"
	"sort"
)

// calculateStatistics computes the descriptive summary for a cohort's
// positive extended prices. Every small-sample and zero-divisor case clamps
// to 0 so no NaN or Inf ever reaches the report.
func calculateStatistics(values []float64) StatisticalSummary {
	n := len(values)
	if n == 0 {
		return StatisticalSummary{}
	}

	// All accumulations run over the sorted copy so the summary is bit-exact
	// regardless of input order. Summing floats is not associative, so
	// iterating in input order would leak permutation noise into the report.
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	min := sorted[0]
	max := sorted[n-1]

	median := percentile(sorted, 50)
	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)

	variance := 0.0
	if n > 1 {
		ss := 0.0
		for _, v := range sorted {
			d := v - mean
			ss += d * d
		}
		variance = ss / float64(n-1)
	}
	stdDev := math.Sqrt(variance)

	cv := 0.0
	if mean != 0 {
		cv = stdDev / mean
	}

	return StatisticalSummary{
		Count:                  n,
		Mean:                   mean,
		Median:                 median,
		Min:                    min,
		Max:                    max,
		Range:                  max - min,
		Variance:               variance,
		StandardDeviation:      stdDev,
		CoefficientOfVariation: cv,
		Q1:                     q1,
		Q3:                     q3,
		IQR:                    q3 - q1,
		Skewness:               skewness(sorted, mean, stdDev),
		Kurtosis:               kurtosis(sorted, mean, stdDev),
	}
}

// percentile interpolates linearly between order statistics at fractional
// rank p/100 * (n-1). Input must already be sorted ascending.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	idx := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// skewness is the adjusted Fisher-Pearson sample estimator. It needs at
// least three points and a positive spread; degenerate samples report 0.
func skewness(values []float64, mean, stdDev float64) float64 {
	if len(values) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(values))
	sum := 0.0
	for _, v := range values {
		z := (v - mean) / stdDev
		sum += z * z * z
	}

	return n / ((n - 1) * (n - 2)) * sum
}

// kurtosis is the adjusted sample excess kurtosis; it needs at least four
// points and a positive spread.
func kurtosis(values []float64, mean, stdDev float64) float64 {
	if len(values) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(values))
	sum := 0.0
	for _, v := range values {
		z := (v - mean) / stdDev
		sum += z * z * z * z
	}

	return n*(n+1)/((n-1)*(n-2)*(n-3))*sum - 3*(n-1)*(n-1)/((n-2)*(n-3))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
