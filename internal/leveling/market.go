package leveling

// performMarketAnalysis rolls cohort-level statistics up into portfolio-wide
// competitiveness, volatility, and maturity measures. A competitive cohort
// has low dispersion (CV below 0.15) and at least three priced bids.
func performMarketAnalysis(groups []GroupedLineItem) MarketAnalysis {
	total := len(groups)
	if total == 0 {
		return MarketAnalysis{}
	}

	competitive := 0
	countSum := 0.0
	cvSum := 0.0
	var dist RiskDistribution

	for _, g := range groups {
		if g.Statistics.CoefficientOfVariation < 0.15 && g.Statistics.Count >= 3 {
			competitive++
		}
		countSum += float64(g.Statistics.Count)
		cvSum += g.Statistics.CoefficientOfVariation

		switch g.RiskAssessment.Level {
		case RiskLow:
			dist.Low++
		case RiskMedium:
			dist.Medium++
		case RiskHigh:
			dist.High++
		}
	}

	return MarketAnalysis{
		TotalItems:          total,
		CompetitiveItems:    competitive,
		NonCompetitiveItems: total - competitive,
		AverageCompetition:  countSum / float64(total),
		PriceVolatility:     cvSum / float64(total),
		MarketMaturity:      float64(competitive) / float64(total),
		RiskDistribution:    dist,
	}
}
