package types

import "github.com/procurehq/bid-leveler/internal/leveling"

// AnalyzeRequest is the payload for the analyze endpoint: the flattened line
// items of every submission under one RFP.
type AnalyzeRequest struct {
	LineItems []leveling.BidLineItem `json:"line_items" binding:"required"`
}

// SettingsRequest carries a partial settings update. Nil fields keep their
// current values.
type SettingsRequest struct {
	OutlierThreshold    *float64 `json:"outlier_threshold"`
	ConfidenceThreshold *float64 `json:"confidence_threshold"`
}
