package ports

import (
	"context"

	"github.com/Breezyryu/batter/domain/compare"
	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/domain/cycle"
)

// TestProject groups related test runs, e.g. one cell model's life test.
type TestProject struct {
	ID          core.ProjectID
	Name        string
	Description string
	CreatedAt   core.Timestamp
}

// TestRun records one analysis invocation: path, channel, cycler, capacity.
type TestRun struct {
	ID          core.RunID
	ProjectID   core.ProjectID
	RawPath     string
	ChannelName string
	CyclerType  string
	CapacityMAh float64
	CreatedAt   core.Timestamp
}

// ProjectRepository persists test projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *TestProject) error
	GetByName(ctx context.Context, name string) (*TestProject, error)
}

// RunRepository persists test runs. (raw path, channel) is unique.
type RunRepository interface {
	Create(ctx context.Context, run *TestRun) error
	GetByID(ctx context.Context, id core.RunID) (*TestRun, error)
	ListByProject(ctx context.Context, projectID core.ProjectID) ([]*TestRun, error)
}

// CycleRepository persists per-cycle rows, one row per run+cycle. Batching
// and uniqueness enforcement live here, not in the pipeline core.
type CycleRepository interface {
	BulkInsert(ctx context.Context, runID core.RunID, rows []cycle.CycleRow) error
	ListByRun(ctx context.Context, runID core.RunID) ([]cycle.CycleRow, error)
}

// ReportRepository persists comparison verdicts for later tooling.
type ReportRepository interface {
	Save(ctx context.Context, id core.ReportID, runID core.RunID, verdict *compare.Verdict) error
}
