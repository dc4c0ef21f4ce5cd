package app

import (
	"context"
	"fmt"

	"github.com/Breezyryu/batter/domain/compare"
	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/internal"
	"github.com/Breezyryu/batter/ports"
)

// ComparisonService validates a candidate run's output against a trusted
// reference run over the same input.
type ComparisonService struct {
	analysis *AnalysisService
	reports  ports.ReportRepository // nil disables persistence
	logger   *internal.Logger
}

// NewComparisonService creates a comparison service.
func NewComparisonService(analysis *AnalysisService, reports ports.ReportRepository) *ComparisonService {
	return &ComparisonService{
		analysis: analysis,
		reports:  reports,
		logger:   internal.DefaultLogger.WithComponent("Comparison"),
	}
}

// ComparePair runs the pipeline against the reference and candidate
// sources on identical configuration and compares the two tables.
func (s *ComparisonService) ComparePair(
	ctx context.Context,
	reference, candidate ports.CycleSource,
	cfg cycle.RunConfig,
	tolerances compare.ToleranceSpec,
) (*compare.Verdict, error) {
	refResult, err := s.analysis.Run(ctx, reference, cfg)
	if err != nil {
		return nil, fmt.Errorf("reference run: %w", err)
	}
	candResult, err := s.analysis.Run(ctx, candidate, cfg)
	if err != nil {
		return nil, fmt.Errorf("candidate run: %w", err)
	}
	return s.CompareResults(ctx, refResult, candResult, tolerances)
}

// CompareResults compares two already-computed run results.
func (s *ComparisonService) CompareResults(
	ctx context.Context,
	reference, candidate *cycle.RunResult,
	tolerances compare.ToleranceSpec,
) (*compare.Verdict, error) {
	engine := compare.NewEngine(tolerances)
	verdict, err := engine.Compare(reference.Capacity, candidate.Capacity, reference.Rows, candidate.Rows)
	if err != nil {
		return nil, err
	}

	s.logger.Info("%s", verdict.Message)

	if s.reports != nil {
		reportID := core.ReportID(core.NewID())
		if err := s.reports.Save(ctx, reportID, candidate.RunID, verdict); err != nil {
			return nil, fmt.Errorf("persist verdict: %w", err)
		}
	}
	return verdict, nil
}
