package leveling

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rfpFixture is a small but realistic submission set: three vendors, two
// cohorts, one inflated bid and one missing price.
func rfpFixture() []BidLineItem {
	return []BidLineItem{
		{ID: "c1", SubmissionID: "s1", VendorName: "Acme", CSICode: "03300", Description: "Cast-In-Place Concrete", UnitPrice: 210, Extended: 21000, ConfidenceScore: 0.95},
		{ID: "c2", SubmissionID: "s2", VendorName: "Bolt", CSICode: "03300", Description: "cast-in-place concrete", UnitPrice: 215, Extended: 21500, ConfidenceScore: 0.9},
		{ID: "c3", SubmissionID: "s3", VendorName: "Crest", CSICode: "03300", Description: "CAST-IN-PLACE CONCRETE", UnitPrice: 208, Extended: 20800, ConfidenceScore: 0.85},
		{ID: "st1", SubmissionID: "s1", VendorName: "Acme", CSICode: "05120", Description: "Structural Steel", UnitPrice: 4.1, Extended: 41000, ConfidenceScore: 0.9},
		{ID: "st2", SubmissionID: "s2", VendorName: "Bolt", CSICode: "05120", Description: "Structural Steel", UnitPrice: 4.3, Extended: 43000, ConfidenceScore: 0.9},
		{ID: "st3", SubmissionID: "s3", VendorName: "Crest", CSICode: "05120", Description: "Structural Steel", Extended: 0, ConfidenceScore: 0.4},
	}
}

func TestAnalyzeBidsReportShape(t *testing.T) {
	engine := NewEngine()
	report := engine.AnalyzeBids(rfpFixture())

	require.Len(t, report.GroupedItems, 2)
	assert.Equal(t, "03300-castinplace concrete", report.GroupedItems[0].GroupKey)
	assert.Equal(t, "05120-structural steel", report.GroupedItems[1].GroupKey)

	require.Len(t, report.VendorPerformance, 3)
	assert.Equal(t, 2, report.MarketAnalysis.TotalItems)
	assert.NotNil(t, report.Recommendations)
}

func TestAnalyzeBidsDeterministic(t *testing.T) {
	engine := NewEngine()
	items := rfpFixture()

	first := engine.AnalyzeBids(items)
	second := engine.AnalyzeBids(items)

	assert.Equal(t, first, second)
}

func TestAnalyzeBidsPermutationInvariantStatistics(t *testing.T) {
	engine := NewEngine()
	items := rfpFixture()

	baseline := engine.AnalyzeBids(items)
	byKey := make(map[string]StatisticalSummary, len(baseline.GroupedItems))
	for _, g := range baseline.GroupedItems {
		byKey[g.GroupKey] = g.Statistics
	}

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]BidLineItem, len(items))
		copy(shuffled, items)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		report := engine.AnalyzeBids(shuffled)
		require.Len(t, report.GroupedItems, len(byKey))
		for _, g := range report.GroupedItems {
			assert.Equal(t, byKey[g.GroupKey], g.Statistics)
		}
	}
}

func TestAnalyzeBidsSingleItemCohort(t *testing.T) {
	items := []BidLineItem{
		{ID: "solo", SubmissionID: "s1", VendorName: "Acme", CSICode: "09900", Description: "Painting", Extended: 5000, ConfidenceScore: 0.9},
	}

	report := NewEngine().AnalyzeBids(items)
	require.Len(t, report.GroupedItems, 1)

	g := report.GroupedItems[0]
	assert.Equal(t, 0.0, g.Statistics.Variance)
	assert.Empty(t, g.Outliers)
	assert.Contains(t, g.RiskAssessment.Factors, "Insufficient sample size")
}

func TestAnalyzeBidsNoPricingData(t *testing.T) {
	items := []BidLineItem{
		{ID: "1", SubmissionID: "s1", CSICode: "02410", Description: "Demolition", Extended: 0},
		{ID: "2", SubmissionID: "s2", CSICode: "02410", Description: "Demolition", Extended: 0},
	}

	report := NewEngine().AnalyzeBids(items)
	require.Len(t, report.GroupedItems, 1)

	g := report.GroupedItems[0]
	assert.Equal(t, RiskHigh, g.RiskAssessment.Level)
	assert.Equal(t, []string{"No pricing data"}, g.RiskAssessment.Factors)
	assert.Equal(t, 1.0, g.RiskAssessment.Confidence)
	assert.Equal(t, StatisticalSummary{}, g.Statistics)
	assert.Empty(t, g.Outliers)
}

func TestAnalyzeBidsEmptyInput(t *testing.T) {
	report := NewEngine().AnalyzeBids(nil)

	assert.Empty(t, report.GroupedItems)
	assert.Empty(t, report.VendorPerformance)
	assert.Equal(t, MarketAnalysis{}, report.MarketAnalysis)

	// A zero-valued market still reads as immature and under-bid.
	require.Len(t, report.Recommendations, 2)
	assert.Contains(t, report.Recommendations[0], "low maturity")
	assert.Contains(t, report.Recommendations[1], "vendor participation")
}

func TestEngineSettings(t *testing.T) {
	engine := NewEngine()
	assert.Equal(t, DefaultConfig(), engine.Settings())

	err := engine.UpdateSettings(Config{OutlierThreshold: 2.0, ConfidenceThreshold: 0.9})
	require.NoError(t, err)
	assert.Equal(t, 2.0, engine.Settings().OutlierThreshold)

	// Invalid updates are rejected and leave the settings untouched.
	err = engine.UpdateSettings(Config{OutlierThreshold: -1, ConfidenceThreshold: 0.9})
	assert.Error(t, err)
	err = engine.UpdateSettings(Config{OutlierThreshold: 1.5, ConfidenceThreshold: 1.5})
	assert.Error(t, err)
	assert.Equal(t, 2.0, engine.Settings().OutlierThreshold)
}

func TestEngineInvalidConfigFallsBackToDefaults(t *testing.T) {
	engine := NewEngineWithConfig(Config{OutlierThreshold: 0, ConfidenceThreshold: 5})
	assert.Equal(t, DefaultConfig(), engine.Settings())
}

func TestOutlierThresholdAffectsDetection(t *testing.T) {
	items := make([]BidLineItem, 0, 6)
	for i, price := range []float64{98, 99, 100, 101, 102, 500} {
		items = append(items, BidLineItem{
			ID:           string(rune('a' + i)),
			SubmissionID: string(rune('a' + i)),
			CSICode:      "03300",
			Description:  "concrete",
			Extended:     price,
		})
	}

	tight := NewEngine().AnalyzeBids(items)
	require.Len(t, tight.GroupedItems, 1)
	assert.Len(t, tight.GroupedItems[0].Outliers, 1)

	loose := NewEngineWithConfig(Config{OutlierThreshold: 200, ConfidenceThreshold: 0.8}).AnalyzeBids(items)
	require.Len(t, loose.GroupedItems, 1)
	assert.Empty(t, loose.GroupedItems[0].Outliers)
}
