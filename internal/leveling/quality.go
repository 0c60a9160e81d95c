package leveling

import "math"

// evaluateDataQuality scores a cohort on completeness (priced coverage),
// consistency (spread of unit prices), and accuracy (extraction confidence).
// Overall is a 0.4/0.3/0.3 weighted blend. Callers guarantee at least one item.
func evaluateDataQuality(items []BidLineItem) DataQuality {
	priced := 0
	confidenceSum := 0.0
	unitPrices := make([]float64, 0, len(items))

	for _, item := range items {
		if item.Extended > 0 {
			priced++
		}
		if item.UnitPrice > 0 {
			unitPrices = append(unitPrices, item.UnitPrice)
		}
		confidenceSum += item.ConfidenceScore
	}

	completeness := float64(priced) / float64(len(items)) * 100

	// A single unit price cannot disagree with itself.
	consistency := 100.0
	if len(unitPrices) > 1 {
		stats := calculateStatistics(unitPrices)
		consistency = math.Max(0, 100-stats.CoefficientOfVariation*100)
	}

	accuracy := confidenceSum / float64(len(items)) * 100

	return DataQuality{
		Completeness: completeness,
		Consistency:  consistency,
		Accuracy:     accuracy,
		Overall:      completeness*0.4 + consistency*0.3 + accuracy*0.3,
	}
}
