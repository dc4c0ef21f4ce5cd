// Package testkit provides synthetic cycler data and in-memory ports for
// tests: deterministic step sequences with known metrics, plus fake
// sources and repositories so pipeline tests need no raw files or database.
package testkit

import (
	"context"
	"math"
	"sync"

	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/domain/profile"
	"github.com/Breezyryu/batter/ports"
)

// PairSpec fixes the synthetic generator's per-cycle quantities.
type PairSpec struct {
	// DischargeMAh is each cycle's discharge capacity.
	DischargeMAh float64
	// Efficiency sets charge capacity to DischargeMAh / Efficiency.
	Efficiency float64
	// EnergyMWh is each cycle's discharge energy.
	EnergyMWh float64
	// RestVoltage is the charge step's end (rest) voltage.
	RestVoltage float64
	// PeakTempC is each step's peak temperature.
	PeakTempC float64
}

// DefaultPairSpec mirrors a healthy mid-life cell on a 1689 mAh reference.
func DefaultPairSpec() PairSpec {
	return PairSpec{
		DischargeMAh: 1627.5,
		Efficiency:   0.9905,
		EnergyMWh:    6022.0,
		RestVoltage:  4.45,
		PeakTempC:    27.3,
	}
}

// GenerateCyclePairs produces n charge+discharge step pairs with cycle
// indices 1..n and exactly known metrics, so tests can assert derived
// values in closed form.
func GenerateCyclePairs(n int, spec PairSpec) []cycle.StepRecord {
	records := make([]cycle.StepRecord, 0, 2*n)
	chargeMAh := spec.DischargeMAh / spec.Efficiency
	for i := 1; i <= n; i++ {
		records = append(records, cycle.StepRecord{
			CycleIndex:      i,
			Condition:       cycle.ConditionCharge,
			Capacity:        chargeMAh,
			Energy:          spec.EnergyMWh * 1.04,
			VoltageEnd:      spec.RestVoltage,
			VoltagePeak:     4.47,
			TemperaturePeak: spec.PeakTempC - 1.1,
			EndFactor:       "Cur",
			VoltageMin:      math.NaN(),
			CurrentPeak:     math.NaN(),
			AvgVoltage:      math.NaN(),
		}, cycle.StepRecord{
			CycleIndex:      i,
			Condition:       cycle.ConditionDischarge,
			Capacity:        spec.DischargeMAh,
			Energy:          spec.EnergyMWh,
			VoltageEnd:      3.0,
			VoltagePeak:     4.42,
			TemperaturePeak: spec.PeakTempC,
			EndFactor:       "Volt",
			VoltageMin:      math.NaN(),
			CurrentPeak:     math.NaN(),
			AvgVoltage:      math.NaN(),
		})
	}
	return records
}

// Source is an in-memory ports.CycleSource over fixed records.
type Source struct {
	CapacityMAh float64
	Records     []cycle.StepRecord
	Pulses      map[int][]profile.Sample
	// CapacityErr forces ResolveReferenceCapacity to fail.
	CapacityErr error
}

var _ ports.CycleSource = (*Source)(nil)

// ResolveReferenceCapacity returns the fixed capacity.
func (s *Source) ResolveReferenceCapacity(ctx context.Context) (float64, error) {
	if s.CapacityErr != nil {
		return 0, s.CapacityErr
	}
	return s.CapacityMAh, nil
}

// LoadSteps returns a copy of the fixed records.
func (s *Source) LoadSteps(ctx context.Context) ([]cycle.StepRecord, error) {
	out := make([]cycle.StepRecord, len(s.Records))
	copy(out, s.Records)
	return out, nil
}

// LoadPulse returns the configured pulse series for a cycle, if any.
func (s *Source) LoadPulse(ctx context.Context, originalCycle int) ([]profile.Sample, error) {
	return s.Pulses[originalCycle], nil
}

// CycleRepo is an in-memory ports.CycleRepository.
type CycleRepo struct {
	mu   sync.Mutex
	Data map[core.RunID][]cycle.CycleRow
}

var _ ports.CycleRepository = (*CycleRepo)(nil)

// NewCycleRepo creates an empty in-memory cycle repository.
func NewCycleRepo() *CycleRepo {
	return &CycleRepo{Data: make(map[core.RunID][]cycle.CycleRow)}
}

// BulkInsert stores rows under the run ID.
func (r *CycleRepo) BulkInsert(ctx context.Context, runID core.RunID, rows []cycle.CycleRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]cycle.CycleRow, len(rows))
	copy(stored, rows)
	r.Data[runID] = stored
	return nil
}

// ListByRun returns the stored rows for a run.
func (r *CycleRepo) ListByRun(ctx context.Context, runID core.RunID) ([]cycle.CycleRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, ok := r.Data[runID]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	return rows, nil
}

// ProjectRepo is an in-memory ports.ProjectRepository.
type ProjectRepo struct {
	mu       sync.Mutex
	Projects map[string]*ports.TestProject
}

var _ ports.ProjectRepository = (*ProjectRepo)(nil)

// NewProjectRepo creates an empty in-memory project repository.
func NewProjectRepo() *ProjectRepo {
	return &ProjectRepo{Projects: make(map[string]*ports.TestProject)}
}

// Create stores a project under its name.
func (r *ProjectRepo) Create(ctx context.Context, project *ports.TestProject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Projects[project.Name] = project
	return nil
}

// GetByName returns the stored project.
func (r *ProjectRepo) GetByName(ctx context.Context, name string) (*ports.TestProject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Projects[name]
	if !ok {
		return nil, core.ErrProjectNotFound
	}
	return p, nil
}

// RunRepo is an in-memory ports.RunRepository.
type RunRepo struct {
	mu   sync.Mutex
	Runs map[core.RunID]*ports.TestRun
}

var _ ports.RunRepository = (*RunRepo)(nil)

// NewRunRepo creates an empty in-memory run repository.
func NewRunRepo() *RunRepo {
	return &RunRepo{Runs: make(map[core.RunID]*ports.TestRun)}
}

// Create stores a run under its ID.
func (r *RunRepo) Create(ctx context.Context, run *ports.TestRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Runs[run.ID] = run
	return nil
}

// GetByID returns the stored run.
func (r *RunRepo) GetByID(ctx context.Context, id core.RunID) (*ports.TestRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.Runs[id]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	return run, nil
}

// ListByProject returns every stored run belonging to a project.
func (r *RunRepo) ListByProject(ctx context.Context, projectID core.ProjectID) ([]*ports.TestRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var runs []*ports.TestRun
	for _, run := range r.Runs {
		if run.ProjectID == projectID {
			runs = append(runs, run)
		}
	}
	return runs, nil
}
