package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerformMarketAnalysisEmpty(t *testing.T) {
	assert.Equal(t, MarketAnalysis{}, performMarketAnalysis(nil))
}

func TestPerformMarketAnalysis(t *testing.T) {
	groups := []GroupedLineItem{
		{
			Statistics:     StatisticalSummary{Count: 3, CoefficientOfVariation: 0.1},
			RiskAssessment: RiskAssessment{Level: RiskLow},
		},
		{
			// Tight pricing but only two bids: not competitive.
			Statistics:     StatisticalSummary{Count: 2, CoefficientOfVariation: 0.1},
			RiskAssessment: RiskAssessment{Level: RiskMedium},
		},
		{
			Statistics:     StatisticalSummary{Count: 4, CoefficientOfVariation: 0.2},
			RiskAssessment: RiskAssessment{Level: RiskHigh},
		},
	}

	market := performMarketAnalysis(groups)

	assert.Equal(t, 3, market.TotalItems)
	assert.Equal(t, 1, market.CompetitiveItems)
	assert.Equal(t, 2, market.NonCompetitiveItems)
	assert.InDelta(t, 3.0, market.AverageCompetition, 1e-9)
	assert.InDelta(t, 0.4/3, market.PriceVolatility, 1e-9)
	assert.InDelta(t, 1.0/3, market.MarketMaturity, 1e-9)
	assert.Equal(t, RiskDistribution{Low: 1, Medium: 1, High: 1}, market.RiskDistribution)
}

func TestPerformMarketAnalysisCompetitiveBoundary(t *testing.T) {
	// CV exactly 0.15 is not strictly below the bar.
	groups := []GroupedLineItem{
		{Statistics: StatisticalSummary{Count: 5, CoefficientOfVariation: 0.15}},
		{Statistics: StatisticalSummary{Count: 5, CoefficientOfVariation: 0.1499}},
	}

	market := performMarketAnalysis(groups)
	assert.Equal(t, 1, market.CompetitiveItems)
	assert.InDelta(t, 0.5, market.MarketMaturity, 1e-9)
}
