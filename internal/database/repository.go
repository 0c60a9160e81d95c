package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/procurehq/bid-leveler/internal/leveling"
)

// ErrRunNotFound is returned when a run id has no stored row.
var ErrRunNotFound = errors.New("analysis run not found")

// RunSummary is the lightweight listing view of a stored run.
type RunSummary struct {
	ID              string    `json:"id"`
	ItemCount       int       `json:"item_count"`
	CohortCount     int       `json:"cohort_count"`
	VendorCount     int       `json:"vendor_count"`
	OutlierCount    int       `json:"outlier_count"`
	HighRiskCohorts int       `json:"high_risk_cohorts"`
	MarketMaturity  float64   `json:"market_maturity"`
	PriceVolatility float64   `json:"price_volatility"`
	CreatedAt       time.Time `json:"created_at"`
}

// StoredRun is a summary plus the full persisted report.
type StoredRun struct {
	RunSummary
	Report leveling.Report `json:"report"`
}

// Repository persists leveling runs
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveRun stores a completed report and returns the generated run id.
func (r *Repository) SaveRun(ctx context.Context, report leveling.Report, itemCount int) (string, error) {
	stmt, err := r.db.GetPreparedStatement("insert_run")
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	outliers := 0
	highRisk := 0
	for _, g := range report.GroupedItems {
		outliers += len(g.Outliers)
		if g.RiskAssessment.Level == leveling.RiskHigh {
			highRisk++
		}
	}

	id := uuid.NewString()
	_, err = stmt.ExecContext(ctx,
		id,
		itemCount,
		len(report.GroupedItems),
		len(report.VendorPerformance),
		outliers,
		highRisk,
		report.MarketAnalysis.MarketMaturity,
		report.MarketAnalysis.PriceVolatility,
		string(payload),
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}

	return id, nil
}

// GetRun loads one run with its full report.
func (r *Repository) GetRun(ctx context.Context, id string) (*StoredRun, error) {
	stmt, err := r.db.GetPreparedStatement("get_run")
	if err != nil {
		return nil, err
	}

	var run StoredRun
	var payload string

	err = stmt.QueryRowContext(ctx, id).Scan(
		&run.ID,
		&run.ItemCount,
		&run.CohortCount,
		&run.VendorCount,
		&run.OutlierCount,
		&run.HighRiskCohorts,
		&run.MarketMaturity,
		&run.PriceVolatility,
		&payload,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(payload), &run.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report for run %s: %w", id, err)
	}

	return &run, nil
}

// ListRuns returns the most recent run summaries, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	stmt, err := r.db.GetPreparedStatement("list_runs")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]RunSummary, 0, limit)
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(
			&s.ID,
			&s.ItemCount,
			&s.CohortCount,
			&s.VendorCount,
			&s.OutlierCount,
			&s.HighRiskCohorts,
			&s.MarketMaturity,
			&s.PriceVolatility,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
