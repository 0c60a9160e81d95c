package leveling

import "math"

// severeFences always use 3.0 x IQR regardless of the configured multiplier.
const severeFenceMultiplier = 3.0

// detectOutliers scores every item in a cohort and keeps the flagged ones,
// preserving item order.
func detectOutliers(items []BidLineItem, stats StatisticalSummary, fenceMultiplier float64) []OutlierItem {
	outliers := make([]OutlierItem, 0)
	for _, item := range items {
		analysis := analyzeOutlier(item.Extended, stats, fenceMultiplier)
		if analysis.IsOutlier {
			outliers = append(outliers, OutlierItem{BidLineItem: item, OutlierAnalysis: analysis})
		}
	}
	return outliers
}

// analyzeOutlier scores one extended price against its cohort summary using
// IQR fences, z-scores, and percentile position. A zero price or an empty
// cohort means "no data", never an outlier.
func analyzeOutlier(value float64, stats StatisticalSummary, fenceMultiplier float64) OutlierAnalysis {
	if value == 0 || stats.Count == 0 {
		return OutlierAnalysis{}
	}

	analysis := OutlierAnalysis{
		PercentileRank: percentileRank(value, stats),
	}

	if stats.StandardDeviation > 0 {
		analysis.ZScore = (value - stats.Mean) / stats.StandardDeviation
	}
	if stats.IQR > 0 {
		// MAD-style robust score with IQR-derived scale standing in for MAD.
		analysis.ModifiedZScore = 0.6745 * (value - stats.Median) / (stats.IQR / 1.35)
		analysis.IQRPosition = (value - stats.Q1) / stats.IQR
	}
	if stats.Median != 0 {
		analysis.DeviationFromMedian = (value - stats.Median) / stats.Median * 100
	}

	lowerBound := stats.Q1 - fenceMultiplier*stats.IQR
	upperBound := stats.Q3 + fenceMultiplier*stats.IQR

	if value >= lowerBound && value <= upperBound {
		return analysis
	}

	analysis.IsOutlier = true
	if value < lowerBound {
		analysis.Direction = OutlierLow
	} else {
		analysis.Direction = OutlierHigh
	}

	severeLower := stats.Q1 - severeFenceMultiplier*stats.IQR
	severeUpper := stats.Q3 + severeFenceMultiplier*stats.IQR
	switch {
	case value < severeLower || value > severeUpper:
		analysis.Severity = SeveritySevere
	case math.Abs(analysis.ZScore) > 2.5:
		analysis.Severity = SeverityModerate
	default:
		analysis.Severity = SeverityMild
	}

	return analysis
}

// percentileRank places a value within the cohort's five-number summary by
// piecewise-linear interpolation, clamped to [0,100]. Segments with equal
// endpoints collapse to the segment's base percentile.
func percentileRank(value float64, stats StatisticalSummary) float64 {
	switch {
	case value <= stats.Min:
		return 0
	case value >= stats.Max:
		return 100
	case value <= stats.Q1:
		return rankSegment(value, stats.Min, stats.Q1, 0)
	case value <= stats.Median:
		return rankSegment(value, stats.Q1, stats.Median, 25)
	case value <= stats.Q3:
		return rankSegment(value, stats.Median, stats.Q3, 50)
	default:
		return rankSegment(value, stats.Q3, stats.Max, 75)
	}
}

func rankSegment(value, lo, hi, base float64) float64 {
	if hi == lo {
		return base
	}
	return clamp(base+25*(value-lo)/(hi-lo), 0, 100)
}
