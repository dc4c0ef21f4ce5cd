package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/domain/profile"
	"github.com/Breezyryu/batter/internal"
	"github.com/Breezyryu/batter/ports"
)

// AnalysisService orchestrates one cycle-metrics run: capacity resolution,
// step loading, the staged calculator, optional DCIR enrichment, and
// optional persistence. Each run owns its data exclusively; an aborted run
// discards partial state and never exposes a partial table.
type AnalysisService struct {
	cycles ports.CycleRepository // nil disables persistence
	logger *internal.Logger
}

// NewAnalysisService creates an analysis service. The repository may be nil
// when the caller only wants the in-memory result.
func NewAnalysisService(cycles ports.CycleRepository) *AnalysisService {
	return &AnalysisService{
		cycles: cycles,
		logger: internal.DefaultLogger.WithComponent("Analysis"),
	}
}

// Run executes the full pipeline against one vendor source.
func (s *AnalysisService) Run(ctx context.Context, source ports.CycleSource, cfg cycle.RunConfig) (*cycle.RunResult, error) {
	start := time.Now()
	runID := core.RunID(core.NewID())

	capacity, err := source.ResolveReferenceCapacity(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve reference capacity: %w", err)
	}

	records, err := source.LoadSteps(ctx)
	if err != nil {
		return nil, fmt.Errorf("load steps: %w", err)
	}

	calc := cycle.NewCalculator()
	if err := calc.ResolveCapacity(capacity); err != nil {
		return nil, err
	}
	if err := calc.Merge(records); err != nil {
		return nil, err
	}
	if err := calc.RenumberCycles(); err != nil {
		return nil, fmt.Errorf("renumber cycles: %w", err)
	}
	if err := calc.ComputeMetrics(); err != nil {
		return nil, err
	}

	if cfg.CheckIR {
		if err := s.enrichDCIR(ctx, source, calc); err != nil {
			return nil, fmt.Errorf("dcir enrichment: %w", err)
		}
	}

	rows, err := calc.Format()
	if err != nil {
		return nil, err
	}

	for _, w := range cycle.CheckPlausibility(rows) {
		s.logger.Warn("implausible metric: %s", w)
	}

	result := &cycle.RunResult{
		RunID:    runID,
		Capacity: calc.Capacity(),
		Rows:     rows,
		Metadata: map[string]interface{}{
			"raw_file_path": cfg.RawPath,
			"capacity_mah":  calc.Capacity(),
			"first_crate":   cfg.FirstCRate,
			"check_ir":      cfg.CheckIR,
			"cycles":        len(rows),
			"runtime_ms":    time.Since(start).Milliseconds(),
		},
	}

	if s.cycles != nil {
		if err := s.cycles.BulkInsert(ctx, runID, rows); err != nil {
			return nil, fmt.Errorf("persist cycle rows: %w", err)
		}
	}

	s.logger.Info("run %s: %d cycles at %.1f mAh in %s",
		runID, len(rows), capacity, time.Since(start))
	return result, nil
}

// enrichDCIR decorates rows with pulse-derived resistance between the
// METRICS_COMPUTED and FORMATTED stages. This is the expensive side path:
// it opens one detail file per pulse cycle, so it only runs when asked.
func (s *AnalysisService) enrichDCIR(ctx context.Context, source ports.CycleSource, calc *cycle.Calculator) error {
	rows := calc.Rows()
	byOriginal := make(map[int]int, len(rows))
	for i, row := range rows {
		byOriginal[row.OriginalCycle] = i
	}

	for _, step := range calc.MergedSteps() {
		if !profile.IsPulseStep(step, calc.Capacity()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		samples, err := source.LoadPulse(ctx, step.OriginalCycle)
		if err != nil {
			return fmt.Errorf("cycle %d: %w", step.OriginalCycle, err)
		}
		if samples == nil {
			continue
		}
		r := profile.PulseResistance(samples)
		if math.IsNaN(r) {
			continue
		}
		if i, ok := byOriginal[step.OriginalCycle]; ok {
			rows[i].DCIR = r
		}
	}
	return nil
}
