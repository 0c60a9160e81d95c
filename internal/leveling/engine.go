package leveling

import (
	"fmt"
	"sync"
)

const (
	defaultOutlierThreshold    = 1.5
	defaultConfidenceThreshold = 0.8
)

// Config holds the engine tunables. OutlierThreshold is the IQR fence
// multiplier; ConfidenceThreshold is carried for downstream consumers and is
// not read by the analysis itself.
type Config struct {
	OutlierThreshold    float64 `json:"outlier_threshold"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		OutlierThreshold:    defaultOutlierThreshold,
		ConfidenceThreshold: defaultConfidenceThreshold,
	}
}

// Validate rejects tunables that would corrupt the fence arithmetic.
func (c Config) Validate() error {
	if c.OutlierThreshold <= 0 {
		return fmt.Errorf("outlier threshold must be positive, got %v", c.OutlierThreshold)
	}
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in (0, 1], got %v", c.ConfidenceThreshold)
	}
	return nil
}

// Engine levels heterogeneous per-vendor bids into a comparable report. It
// is a pure in-memory pipeline: the only state is the two tunables, and each
// analysis snapshots them at entry, so a settings update is either fully
// before or fully after any given run. Safe for concurrent use.
type Engine struct {
	mu  sync.RWMutex
	cfg Config
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultConfig())
}

// NewEngineWithConfig creates an engine with the given settings. Invalid
// settings fall back to the defaults.
func NewEngineWithConfig(cfg Config) *Engine {
	if err := cfg.Validate(); err != nil {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Settings returns the current tunables.
func (e *Engine) Settings() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// UpdateSettings replaces the tunables between analysis runs.
func (e *Engine) UpdateSettings(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	return nil
}

// AnalyzeBids runs the full leveling pipeline: group items into cohorts,
// derive per-cohort statistics, outliers, risk, and data quality, then
// aggregate vendor performance, market analysis, and recommendations.
// The result is a pure function of the input and the settings snapshot.
func (e *Engine) AnalyzeBids(items []BidLineItem) Report {
	cfg := e.Settings()

	groups := groupLineItems(items)
	for i := range groups {
		analyzeGroup(&groups[i], cfg.OutlierThreshold)
	}

	vendors := calculateVendorPerformance(items, groups)
	market := performMarketAnalysis(groups)

	return Report{
		GroupedItems:      groups,
		VendorPerformance: vendors,
		MarketAnalysis:    market,
		Recommendations:   generateRecommendations(groups, vendors, market),
	}
}

// analyzeGroup fills in the derived fields of one cohort. A cohort with no
// priced items short-circuits to a forced high-risk assessment with zeroed
// statistics and quality.
func analyzeGroup(group *GroupedLineItem, fenceMultiplier float64) {
	prices := make([]float64, 0, len(group.Items))
	for _, item := range group.Items {
		if item.Extended > 0 {
			prices = append(prices, item.Extended)
		}
	}

	group.Outliers = []OutlierItem{}
	if len(prices) == 0 {
		group.RiskAssessment = RiskAssessment{
			Level:      RiskHigh,
			Factors:    []string{"No pricing data"},
			Confidence: 1.0,
		}
		return
	}

	group.Statistics = calculateStatistics(prices)
	group.Outliers = detectOutliers(group.Items, group.Statistics, fenceMultiplier)
	group.RiskAssessment = assessRisk(group.Statistics, group.Outliers, group.Items)
	group.DataQuality = evaluateDataQuality(group.Items)
}
