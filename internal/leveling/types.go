package leveling

import "time"

// BidLineItem is one priced row extracted from a vendor's proposal document.
// Records come from the ingestion pipeline and are read-only inside the engine.
type BidLineItem struct {
	ID              string    `json:"id"`
	SubmissionID    string    `json:"submission_id"`
	VendorName      string    `json:"vendor_name"`
	CSICode         string    `json:"csi_code"`
	Description     string    `json:"description"`
	Quantity        float64   `json:"quantity"`
	UnitOfMeasure   string    `json:"unit_of_measure"`
	UnitPrice       float64   `json:"unit_price"`
	Extended        float64   `json:"extended"`
	IsAllowance     bool      `json:"is_allowance"`
	ConfidenceScore float64   `json:"confidence_score"`
	ExtractedAt     time.Time `json:"extracted_at"`
}

// StatisticalSummary describes the distribution of a cohort's positive
// extended prices. A cohort with no priced items carries the zero summary.
type StatisticalSummary struct {
	Count                  int     `json:"count"`
	Mean                   float64 `json:"mean"`
	Median                 float64 `json:"median"`
	Min                    float64 `json:"min"`
	Max                    float64 `json:"max"`
	Range                  float64 `json:"range"`
	Variance               float64 `json:"variance"`
	StandardDeviation      float64 `json:"standard_deviation"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Q1                     float64 `json:"q1"`
	Q3                     float64 `json:"q3"`
	IQR                    float64 `json:"iqr"`
	Skewness               float64 `json:"skewness"`
	Kurtosis               float64 `json:"kurtosis"`
}

// OutlierDirection indicates which fence a flagged price crossed.
type OutlierDirection string

const (
	OutlierNone OutlierDirection = ""
	OutlierLow  OutlierDirection = "low"
	OutlierHigh OutlierDirection = "high"
)

// OutlierSeverity grades how far outside the fences a flagged price sits.
type OutlierSeverity string

const (
	SeverityNone     OutlierSeverity = ""
	SeverityMild     OutlierSeverity = "mild"
	SeverityModerate OutlierSeverity = "moderate"
	SeveritySevere   OutlierSeverity = "severe"
)

// OutlierAnalysis scores one item's extended price against its cohort.
type OutlierAnalysis struct {
	IsOutlier           bool             `json:"is_outlier"`
	Direction           OutlierDirection `json:"direction,omitempty"`
	Severity            OutlierSeverity  `json:"severity,omitempty"`
	DeviationFromMedian float64          `json:"deviation_from_median"`
	PercentileRank      float64          `json:"percentile_rank"`
	ZScore              float64          `json:"z_score"`
	ModifiedZScore      float64          `json:"modified_z_score"`
	IQRPosition         float64          `json:"iqr_position"`
}

// OutlierItem is a flagged line item together with its outlier metrics.
type OutlierItem struct {
	BidLineItem
	OutlierAnalysis
}

// RiskLevel is the categorical risk rating of a cohort.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskAssessment explains a cohort's risk rating.
type RiskAssessment struct {
	Level      RiskLevel `json:"level"`
	Factors    []string  `json:"factors"`
	Confidence float64   `json:"confidence"`
}

// DataQuality scores a cohort's completeness, pricing consistency, and
// extraction accuracy, each on a 0-100 scale.
type DataQuality struct {
	Completeness float64 `json:"completeness"`
	Consistency  float64 `json:"consistency"`
	Accuracy     float64 `json:"accuracy"`
	Overall      float64 `json:"overall"`
}

// GroupedLineItem is a cohort: the line items from different vendors judged
// comparable, plus everything derived from them during an analysis run.
type GroupedLineItem struct {
	GroupKey       string             `json:"group_key"`
	CSICode        string             `json:"csi_code"`
	Description    string             `json:"description"`
	Items          []BidLineItem      `json:"items"`
	Statistics     StatisticalSummary `json:"statistics"`
	Outliers       []OutlierItem      `json:"outliers"`
	RiskAssessment RiskAssessment     `json:"risk_assessment"`
	DataQuality    DataQuality        `json:"data_quality"`
}

// VendorPerformance is one vendor's standing across every cohort in the bid.
type VendorPerformance struct {
	VendorID             string  `json:"vendor_id"`
	VendorName           string  `json:"vendor_name"`
	TotalItems           int     `json:"total_items"`
	CompetitiveItems     int     `json:"competitive_items"`
	OutlierItems         int     `json:"outlier_items"`
	MissingItems         int     `json:"missing_items"`
	AverageRank          float64 `json:"average_rank"`
	CompetitivenessScore float64 `json:"competitiveness_score"`
	ReliabilityScore     float64 `json:"reliability_score"`
	OverallScore         float64 `json:"overall_score"`
}

// RiskDistribution tallies cohorts by risk level.
type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// MarketAnalysis rolls cohort statistics up to the whole portfolio.
type MarketAnalysis struct {
	TotalItems          int              `json:"total_items"`
	CompetitiveItems    int              `json:"competitive_items"`
	NonCompetitiveItems int              `json:"non_competitive_items"`
	AverageCompetition  float64          `json:"average_competition"`
	PriceVolatility     float64          `json:"price_volatility"`
	MarketMaturity      float64          `json:"market_maturity"`
	RiskDistribution    RiskDistribution `json:"risk_distribution"`
}

// Report is the complete output of one analysis run.
type Report struct {
	GroupedItems      []GroupedLineItem   `json:"grouped_items"`
	VendorPerformance []VendorPerformance `json:"vendor_performance"`
	MarketAnalysis    MarketAnalysis      `json:"market_analysis"`
	Recommendations   []string            `json:"recommendations"`
}
