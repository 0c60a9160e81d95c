package leveling

import "fmt"

// generateRecommendations derives advisory guidance from the aggregate
// results. The trigger order is fixed so reports are reproducible.
func generateRecommendations(groups []GroupedLineItem, vendors []VendorPerformance, market MarketAnalysis) []string {
	recommendations := make([]string, 0, 4)

	if market.MarketMaturity < 0.5 {
		recommendations = append(recommendations,
			"Market shows low maturity with high price volatility. Consider pre-qualification of vendors.")
	}

	if market.AverageCompetition < 3 {
		recommendations = append(recommendations,
			"Low vendor participation. Consider expanding vendor outreach or adjusting requirements.")
	}

	if market.PriceVolatility > 0.3 {
		recommendations = append(recommendations,
			"High price volatility detected. Implement additional scope clarifications.")
	}

	highRisk := 0
	for _, g := range groups {
		if g.RiskAssessment.Level == RiskHigh {
			highRisk++
		}
	}
	if highRisk > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d line items require additional scrutiny due to high risk factors.", highRisk))
	}

	unreliable := 0
	for _, v := range vendors {
		if v.ReliabilityScore < 70 {
			unreliable++
		}
	}
	if unreliable > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d vendors have low response rates. Follow up on missing items.", unreliable))
	}

	outlierHeavy := 0
	for _, v := range vendors {
		priced := v.TotalItems - v.MissingItems
		if float64(v.OutlierItems) > float64(priced)*0.2 {
			outlierHeavy++
		}
	}
	if outlierHeavy > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d vendors have high outlier rates. Request pricing clarifications.", outlierHeavy))
	}

	lowQuality := 0
	for _, g := range groups {
		if g.DataQuality.Overall < 70 {
			lowQuality++
		}
	}
	if lowQuality > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d line items have data quality issues. Verify extraction accuracy.", lowQuality))
	}

	return recommendations
}
