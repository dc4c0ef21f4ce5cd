package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/ports"
)

// projectRepository implements the ProjectRepository interface
type projectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sqlx.DB) ports.ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts a new test project
func (r *projectRepository) Create(ctx context.Context, project *ports.TestProject) error {
	query := `INSERT INTO test_projects (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query,
		project.ID.String(), project.Name, project.Description, project.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByName retrieves a project by its unique name
func (r *projectRepository) GetByName(ctx context.Context, name string) (*ports.TestProject, error) {
	query := `SELECT id, name, description, created_at FROM test_projects WHERE name = $1`

	var (
		p         ports.TestProject
		id        string
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx, query, name).Scan(&id, &p.Name, &p.Description, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrProjectNotFound, name)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	p.ID = core.ProjectID(id)
	p.CreatedAt = core.NewTimestamp(createdAt)
	return &p, nil
}

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Create inserts a new test run
func (r *runRepository) Create(ctx context.Context, run *ports.TestRun) error {
	query := `INSERT INTO test_runs (
		id, project_id, raw_path, channel_name, cycler_type, capacity_mah, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID.String(), run.ProjectID.String(), run.RawPath, run.ChannelName,
		run.CyclerType, run.CapacityMAh, run.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to create test run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*ports.TestRun, error) {
	query := `SELECT id, project_id, raw_path, channel_name, cycler_type,
		COALESCE(capacity_mah, 0), created_at
	FROM test_runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to get test run: %w", err)
	}
	return run, nil
}

// ListByProject retrieves all runs for a project, newest first
func (r *runRepository) ListByProject(ctx context.Context, projectID core.ProjectID) ([]*ports.TestRun, error) {
	query := `SELECT id, project_id, raw_path, channel_name, cycler_type,
		COALESCE(capacity_mah, 0), created_at
	FROM test_runs WHERE project_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list test runs: %w", err)
	}
	defer rows.Close()

	var runs []*ports.TestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s rowScanner) (*ports.TestRun, error) {
	var (
		run           ports.TestRun
		id, projectID string
		createdAt     time.Time
	)
	err := s.Scan(&id, &projectID, &run.RawPath, &run.ChannelName,
		&run.CyclerType, &run.CapacityMAh, &createdAt)
	if err != nil {
		return nil, err
	}
	run.ID = core.RunID(id)
	run.ProjectID = core.ProjectID(projectID)
	run.CreatedAt = core.NewTimestamp(createdAt)
	return &run, nil
}
