package leveling

import (
	"math"
	"sort"
)

// Normalized ranks at or below this cut count as a competitive bid.
const competitiveRankCutoff = 0.33

// vendorAccumulator collects one vendor's items, normalized ranks, and
// outlier count during the cross-cohort pass, before scores are frozen into
// an immutable VendorPerformance.
type vendorAccumulator struct {
	vendorID   string
	vendorName string
	items      []BidLineItem
	ranks      []float64
	outliers   int
}

// calculateVendorPerformance scores every vendor (keyed by submission) across
// all cohorts and returns them ordered best-first. Ties keep submission order.
func calculateVendorPerformance(items []BidLineItem, groups []GroupedLineItem) []VendorPerformance {
	index := make(map[string]*vendorAccumulator)
	order := make([]*vendorAccumulator, 0)

	for _, item := range items {
		acc, ok := index[item.SubmissionID]
		if !ok {
			acc = &vendorAccumulator{vendorID: item.SubmissionID, vendorName: item.VendorName}
			index[item.SubmissionID] = acc
			order = append(order, acc)
		}
		acc.items = append(acc.items, item)
	}

	for _, group := range groups {
		ranked := make([]BidLineItem, 0, len(group.Items))
		for _, item := range group.Items {
			if item.Extended > 0 {
				ranked = append(ranked, item)
			}
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Extended < ranked[j].Extended })

		outlierIDs := make(map[string]bool, len(group.Outliers))
		for _, o := range group.Outliers {
			outlierIDs[o.ID] = true
		}

		for pos, item := range ranked {
			acc, ok := index[item.SubmissionID]
			if !ok {
				continue
			}
			acc.ranks = append(acc.ranks, float64(pos+1)/float64(len(ranked)))
			if outlierIDs[item.ID] {
				acc.outliers++
			}
		}
	}

	performance := make([]VendorPerformance, 0, len(order))
	for _, acc := range order {
		performance = append(performance, acc.finalize())
	}

	sort.SliceStable(performance, func(i, j int) bool {
		return performance[i].OverallScore > performance[j].OverallScore
	})

	return performance
}

// finalize freezes the accumulator into a scored performance record.
func (acc *vendorAccumulator) finalize() VendorPerformance {
	totalItems := len(acc.items)

	priced := 0
	for _, item := range acc.items {
		if item.Extended > 0 {
			priced++
		}
	}

	competitive := 0
	for _, r := range acc.ranks {
		if r <= competitiveRankCutoff {
			competitive++
		}
	}

	// No ranked items means the vendor never priced anything: worst rank.
	averageRank := 1.0
	if len(acc.ranks) > 0 {
		sum := 0.0
		for _, r := range acc.ranks {
			sum += r
		}
		averageRank = sum / float64(len(acc.ranks))
	}

	competitiveness := float64(competitive) / math.Max(1, float64(priced)) * 100
	reliability := float64(priced) / float64(totalItems) * 100
	outlierPenalty := float64(acc.outliers) / math.Max(1, float64(priced)) * 20

	overall := math.Max(0, competitiveness*0.4+reliability*0.4+(100-averageRank*100)*0.2-outlierPenalty)

	return VendorPerformance{
		VendorID:             acc.vendorID,
		VendorName:           acc.vendorName,
		TotalItems:           totalItems,
		CompetitiveItems:     competitive,
		OutlierItems:         acc.outliers,
		MissingItems:         totalItems - priced,
		AverageRank:          averageRank,
		CompetitivenessScore: competitiveness,
		ReliabilityScore:     reliability,
		OverallScore:         overall,
	}
}
