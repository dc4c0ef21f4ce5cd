package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/internal"
	"github.com/Breezyryu/batter/internal/pathutil"
	"github.com/Breezyryu/batter/ports"
)

// RunRegistrar records analysis runs under a test project so later tooling
// can find them. Registration is separate from the pipeline: a run that is
// never registered is still a valid analysis.
type RunRegistrar struct {
	projects ports.ProjectRepository
	runs     ports.RunRepository
	logger   *internal.Logger
}

// NewRunRegistrar creates a run registrar.
func NewRunRegistrar(projects ports.ProjectRepository, runs ports.RunRepository) *RunRegistrar {
	return &RunRegistrar{
		projects: projects,
		runs:     runs,
		logger:   internal.DefaultLogger.WithComponent("Registrar"),
	}
}

// Register files a completed run under the named project, creating the
// project on first use.
func (r *RunRegistrar) Register(ctx context.Context, projectName, channelName string, result *cycle.RunResult, cfg cycle.RunConfig) error {
	project, err := r.projects.GetByName(ctx, projectName)
	switch {
	case errors.Is(err, core.ErrProjectNotFound):
		project = &ports.TestProject{
			ID:        core.ProjectID(core.NewID()),
			Name:      projectName,
			CreatedAt: core.Now(),
		}
		if err := r.projects.Create(ctx, project); err != nil {
			return fmt.Errorf("create project %s: %w", projectName, err)
		}
		r.logger.Info("created project %s", projectName)
	case err != nil:
		return fmt.Errorf("look up project %s: %w", projectName, err)
	}

	run := &ports.TestRun{
		ID:          result.RunID,
		ProjectID:   project.ID,
		RawPath:     cfg.RawPath,
		ChannelName: channelName,
		CyclerType:  string(pathutil.CyclerToyo),
		CapacityMAh: result.Capacity,
		CreatedAt:   core.Now(),
	}
	if err := r.runs.Create(ctx, run); err != nil {
		return fmt.Errorf("register run %s: %w", result.RunID, err)
	}
	r.logger.Info("registered run %s under %s", result.RunID, projectName)
	return nil
}
