package ports

import (
	"context"

	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/domain/profile"
)

// CycleSource abstracts the vendor-specific side of an analysis run. The
// orchestrating stage sequence stays vendor-agnostic; only capacity
// resolution and file loading differ per cycler.
type CycleSource interface {
	// ResolveReferenceCapacity returns the run's reference capacity in mAh.
	// It is called once per run; the result is fixed for the whole run.
	ResolveReferenceCapacity(ctx context.Context) (float64, error)

	// LoadSteps loads and validates the ordered cycle step records.
	LoadSteps(ctx context.Context) ([]cycle.StepRecord, error)

	// LoadPulse loads the per-cycle pulse detail series used for DCIR.
	// Returns nil samples without error when the cycle has no pulse file.
	LoadPulse(ctx context.Context, originalCycle int) ([]profile.Sample, error)
}
