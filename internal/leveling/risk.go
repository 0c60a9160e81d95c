package leveling

import (
	"fmt"
	"math"
)

// assessRisk accumulates an additive risk score from independent signals:
// price volatility, outlier census, response completeness, sample size, and
// distribution shape. Each triggered signal contributes a readable factor.
// Callers guarantee the cohort has at least one item.
func assessRisk(stats StatisticalSummary, outliers []OutlierItem, items []BidLineItem) RiskAssessment {
	factors := make([]string, 0, 4)
	score := 0

	switch {
	case stats.CoefficientOfVariation > 0.3:
		factors = append(factors, "High price volatility")
		score += 30
	case stats.CoefficientOfVariation > 0.15:
		factors = append(factors, "Moderate price volatility")
		score += 15
	}

	outlierRatio := float64(len(outliers)) / float64(len(items))
	switch {
	case outlierRatio > 0.4:
		factors = append(factors, "High outlier rate")
		score += 25
	case outlierRatio > 0.2:
		factors = append(factors, "Moderate outlier rate")
		score += 10
	}

	priced := 0
	for _, item := range items {
		if item.Extended > 0 {
			priced++
		}
	}
	responseRate := float64(priced) / float64(len(items))
	switch {
	case responseRate < 0.7:
		factors = append(factors, "Low response rate")
		score += 20
	case responseRate < 0.9:
		factors = append(factors, "Moderate response rate")
		score += 5
	}

	severe := 0
	for _, o := range outliers {
		if o.Severity == SeveritySevere {
			severe++
		}
	}
	if severe > 0 {
		factors = append(factors, fmt.Sprintf("%d severe outlier(s)", severe))
		score += severe * 10
	}

	switch {
	case stats.Count < 3:
		factors = append(factors, "Insufficient sample size")
		score += 30
	case stats.Count < 5:
		factors = append(factors, "Small sample size")
		score += 10
	}

	switch {
	case math.Abs(stats.Skewness) > 2:
		factors = append(factors, "Highly skewed distribution")
		score += 15
	case math.Abs(stats.Skewness) > 1:
		factors = append(factors, "Moderately skewed distribution")
		score += 5
	}

	level := RiskLow
	switch {
	case score >= 50:
		level = RiskHigh
	case score >= 25:
		level = RiskMedium
	}

	confidence := clamp(1.0-math.Abs(50-float64(score))/100, 0.1, 1.0)

	return RiskAssessment{Level: level, Factors: factors, Confidence: confidence}
}
