package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Breezyryu/batter/domain/compare"
	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/ports"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

// Save stores a comparison verdict as its flat key-value payload so
// downstream tooling can query it without knowing the struct shape.
func (r *reportRepository) Save(ctx context.Context, id core.ReportID, runID core.RunID, verdict *compare.Verdict) error {
	payload, err := json.Marshal(verdict.Flatten())
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}

	query := `INSERT INTO comparison_reports (id, test_run_id, passed, payload)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, id.String(), runID.String(), verdict.Passed, payload); err != nil {
		return fmt.Errorf("failed to save comparison report: %w", err)
	}
	return nil
}
