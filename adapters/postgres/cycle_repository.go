package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/ports"
)

// cycleRepository implements the CycleRepository interface
type cycleRepository struct {
	db *sqlx.DB
}

// NewCycleRepository creates a new cycle repository
func NewCycleRepository(db *sqlx.DB) ports.CycleRepository {
	return &cycleRepository{db: db}
}

// BulkInsert stores one row per cycle inside a single transaction.
// NaN metrics are stored as NULL, never coerced to zero.
func (r *cycleRepository) BulkInsert(ctx context.Context, runID core.RunID, rows []cycle.CycleRow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cycle insert: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO cycle_data (
		test_run_id, cycle_number, original_cycle,
		chg_capacity_norm, dchg_capacity_norm,
		efficiency_chg_dchg, efficiency_dchg_chg,
		dchg_energy_mwh, rest_end_voltage_v, avg_voltage_v,
		peak_temperature_c, resistance_mohm
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	for _, row := range rows {
		_, err := tx.ExecContext(ctx, query,
			runID.String(), row.CycleNumber, row.OriginalCycle,
			nullable(row.ChgNorm), nullable(row.DchgNorm),
			nullable(row.Eff), nullable(row.Eff2),
			nullable(row.DchgEnergy), nullable(row.RestEndV), nullable(row.AvgVoltage),
			nullable(row.PeakTemp), nullable(row.DCIR),
		)
		if err != nil {
			return fmt.Errorf("insert cycle %d: %w", row.CycleNumber, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cycle insert: %w", err)
	}
	return nil
}

// ListByRun retrieves the cycle table for a run in cycle order.
func (r *cycleRepository) ListByRun(ctx context.Context, runID core.RunID) ([]cycle.CycleRow, error) {
	query := `SELECT
		cycle_number, original_cycle,
		chg_capacity_norm, dchg_capacity_norm,
		efficiency_chg_dchg, efficiency_dchg_chg,
		dchg_energy_mwh, rest_end_voltage_v, avg_voltage_v,
		peak_temperature_c, resistance_mohm
	FROM cycle_data WHERE test_run_id = $1 ORDER BY cycle_number`

	dbRows, err := r.db.QueryxContext(ctx, query, runID.String())
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer dbRows.Close()

	var rows []cycle.CycleRow
	for dbRows.Next() {
		var (
			row                          cycle.CycleRow
			chg, dchg, eff, eff2, energy sql.NullFloat64
			restV, avgV, temp, dcir      sql.NullFloat64
		)
		err := dbRows.Scan(
			&row.CycleNumber, &row.OriginalCycle,
			&chg, &dchg, &eff, &eff2, &energy, &restV, &avgV, &temp, &dcir,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cycle row: %w", err)
		}
		row.ChgNorm = fromNullable(chg)
		row.DchgNorm = fromNullable(dchg)
		row.Eff = fromNullable(eff)
		row.Eff2 = fromNullable(eff2)
		row.DchgEnergy = fromNullable(energy)
		row.RestEndV = fromNullable(restV)
		row.AvgVoltage = fromNullable(avgV)
		row.PeakTemp = fromNullable(temp)
		row.DCIR = fromNullable(dcir)
		rows = append(rows, row)
	}
	return rows, dbRows.Err()
}

// nullable converts a NaN metric to SQL NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// fromNullable converts SQL NULL back to NaN.
func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
