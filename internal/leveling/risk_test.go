package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessRiskLowRisk(t *testing.T) {
	// Five tight bids: no volatility, full response, healthy sample.
	items := []BidLineItem{
		{ID: "1", Extended: 100}, {ID: "2", Extended: 101}, {ID: "3", Extended: 99},
		{ID: "4", Extended: 100}, {ID: "5", Extended: 102},
	}
	stats := calculateStatistics([]float64{100, 101, 99, 100, 102})

	risk := assessRisk(stats, nil, items)

	assert.Equal(t, RiskLow, risk.Level)
	assert.Empty(t, risk.Factors)
}

func TestAssessRiskInsufficientSample(t *testing.T) {
	items := []BidLineItem{{ID: "1", Extended: 1000}}
	stats := calculateStatistics([]float64{1000})

	risk := assessRisk(stats, nil, items)

	assert.Contains(t, risk.Factors, "Insufficient sample size")
	assert.Equal(t, RiskMedium, risk.Level) // score 30
	assert.InDelta(t, 0.8, risk.Confidence, 1e-9)
}

func TestAssessRiskVolatilityTiers(t *testing.T) {
	items := make([]BidLineItem, 5)
	for i := range items {
		items[i] = BidLineItem{Extended: 100}
	}

	tests := []struct {
		name   string
		cv     float64
		factor string
	}{
		{"high volatility", 0.35, "High price volatility"},
		{"moderate volatility", 0.2, "Moderate price volatility"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := StatisticalSummary{Count: 5, CoefficientOfVariation: tt.cv}
			risk := assessRisk(stats, nil, items)
			assert.Contains(t, risk.Factors, tt.factor)
		})
	}
}

func TestAssessRiskSevereOutliersAccumulate(t *testing.T) {
	items := make([]BidLineItem, 10)
	for i := range items {
		items[i] = BidLineItem{Extended: 100}
	}
	stats := StatisticalSummary{Count: 10}

	severe := OutlierItem{OutlierAnalysis: OutlierAnalysis{IsOutlier: true, Severity: SeveritySevere}}

	// An outlier ratio of exactly 0.2 sits on the boundary and does not
	// count as a moderate rate.
	risk := assessRisk(stats, []OutlierItem{severe, severe}, items)
	assert.Contains(t, risk.Factors, "2 severe outlier(s)")
	assert.NotContains(t, risk.Factors, "Moderate outlier rate")

	// Three severe outliers add 30 on top of the moderate outlier-rate signal.
	risk = assessRisk(stats, []OutlierItem{severe, severe, severe}, items)
	assert.Contains(t, risk.Factors, "3 severe outlier(s)")
	assert.Contains(t, risk.Factors, "Moderate outlier rate")
}

func TestAssessRiskResponseRate(t *testing.T) {
	items := []BidLineItem{
		{Extended: 100}, {Extended: 100}, {Extended: 100},
		{Extended: 0}, {Extended: 0},
	}
	stats := StatisticalSummary{Count: 3}

	risk := assessRisk(stats, nil, items)

	// 3 of 5 priced is a 60% response rate.
	assert.Contains(t, risk.Factors, "Low response rate")
}

func TestAssessRiskSkewTiers(t *testing.T) {
	items := make([]BidLineItem, 5)
	for i := range items {
		items[i] = BidLineItem{Extended: 100}
	}

	risk := assessRisk(StatisticalSummary{Count: 5, Skewness: 2.5}, nil, items)
	assert.Contains(t, risk.Factors, "Highly skewed distribution")

	risk = assessRisk(StatisticalSummary{Count: 5, Skewness: -1.5}, nil, items)
	assert.Contains(t, risk.Factors, "Moderately skewed distribution")
}

func TestAssessRiskConfidenceBounds(t *testing.T) {
	items := make([]BidLineItem, 5)
	for i := range items {
		items[i] = BidLineItem{Extended: 100}
	}

	// Sweep a range of signal mixes; confidence stays inside [0.1, 1.0].
	for _, cv := range []float64{0, 0.2, 0.5, 2.0} {
		for _, skew := range []float64{0, 1.5, 3} {
			stats := StatisticalSummary{Count: 5, CoefficientOfVariation: cv, Skewness: skew}
			risk := assessRisk(stats, nil, items)
			assert.GreaterOrEqual(t, risk.Confidence, 0.1)
			assert.LessOrEqual(t, risk.Confidence, 1.0)
		}
	}
}

func TestRiskLevelThresholds(t *testing.T) {
	items := make([]BidLineItem, 10)
	for i := range items {
		items[i] = BidLineItem{Extended: 100}
	}

	// CV 0.35 (+30) and skew 2.5 (+15) and small-sample left out: 45 -> medium.
	risk := assessRisk(StatisticalSummary{Count: 10, CoefficientOfVariation: 0.35, Skewness: 2.5}, nil, items)
	assert.Equal(t, RiskMedium, risk.Level)

	// Add a severe outlier (+10): 55 -> high.
	outliers := []OutlierItem{{OutlierAnalysis: OutlierAnalysis{IsOutlier: true, Severity: SeveritySevere}}}
	risk = assessRisk(StatisticalSummary{Count: 10, CoefficientOfVariation: 0.35, Skewness: 2.5}, outliers, items)
	assert.Equal(t, RiskHigh, risk.Level)
}
