package cycle

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Breezyryu/batter/domain/core"
)

// Stage tracks the calculator's position in the fixed pipeline sequence.
// No stage may be skipped or reordered.
type Stage int

const (
	StageInit Stage = iota
	StageCapacityResolved
	StageStepsMerged
	StageRenumbered
	StageMetricsComputed
	StageFormatted
)

// String returns a readable stage name
func (s Stage) String() string {
	switch s {
	case StageInit:
		return "INIT"
	case StageCapacityResolved:
		return "CAPACITY_RESOLVED"
	case StageStepsMerged:
		return "STEPS_MERGED"
	case StageRenumbered:
		return "RENUMBERED"
	case StageMetricsComputed:
		return "METRICS_COMPUTED"
	case StageFormatted:
		return "FORMATTED"
	default:
		return "UNKNOWN"
	}
}

// Calculator runs the per-cycle metrics pipeline:
// INIT -> CAPACITY_RESOLVED -> STEPS_MERGED -> RENUMBERED -> METRICS_COMPUTED -> FORMATTED.
// One Calculator serves exactly one run and owns its intermediate data.
type Calculator struct {
	stage    Stage
	capacity float64
	merged   []MergedStep
	rows     []CycleRow
}

// NewCalculator creates a calculator in the INIT state.
func NewCalculator() *Calculator {
	return &Calculator{stage: StageInit}
}

// Stage reports the current pipeline stage.
func (c *Calculator) Stage() Stage { return c.stage }

// Capacity reports the resolved reference capacity in mAh.
func (c *Calculator) Capacity() float64 { return c.capacity }

func (c *Calculator) require(expected Stage) error {
	if c.stage != expected {
		return core.NewStageOrderError(expected.String(), c.stage.String())
	}
	return nil
}

// ResolveCapacity fixes the reference capacity for the whole run.
// The value is never recomputed per cycle.
func (c *Calculator) ResolveCapacity(capacity float64) error {
	if err := c.require(StageInit); err != nil {
		return err
	}
	if capacity <= 0 {
		return core.NewCapacityReferenceError(capacity)
	}
	c.capacity = capacity
	c.stage = StageCapacityResolved
	return nil
}

// Merge collapses consecutive same-condition steps.
func (c *Calculator) Merge(records []StepRecord) error {
	if err := c.require(StageCapacityResolved); err != nil {
		return err
	}
	c.merged = MergeSteps(records)
	c.stage = StageStepsMerged
	return nil
}

// RenumberCycles re-indexes cycles from the first discharge.
func (c *Calculator) RenumberCycles() error {
	if err := c.require(StageStepsMerged); err != nil {
		return err
	}
	renumbered, err := Renumber(c.merged)
	if err != nil {
		return err
	}
	c.merged = renumbered
	c.stage = StageRenumbered
	return nil
}

// ComputeMetrics derives one CycleRow per cycle that has a qualifying
// discharge step. Steps whose capacity is at or below capacity/60 are
// bookkeeping or pulse steps and are excluded, as are charge steps that
// terminated on a voltage end factor.
func (c *Calculator) ComputeMetrics() error {
	if err := c.require(StageRenumbered); err != nil {
		return err
	}

	noiseFloor := c.capacity / 60

	charge := make(map[int]MergedStep)
	discharge := make(map[int]MergedStep)
	for _, s := range c.merged {
		if s.Capacity <= noiseFloor {
			continue
		}
		switch s.Condition {
		case ConditionCharge:
			if isVoltageTerminated(s.EndFactor) {
				continue
			}
			charge[s.CycleIndex] = s
		case ConditionDischarge:
			discharge[s.CycleIndex] = s
		}
	}

	numbers := make([]int, 0, len(discharge))
	for n := range discharge {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	rows := make([]CycleRow, 0, len(numbers))
	for _, n := range numbers {
		dchg := discharge[n]
		row := NewCycleRow(n, dchg.OriginalCycle)

		row.DchgNorm = dchg.Capacity / c.capacity
		row.DchgEnergy = dchg.Energy
		if dchg.Capacity > 0 {
			row.AvgVoltage = dchg.Energy / dchg.Capacity
		}
		row.PeakTemp = dchg.TemperaturePeak

		if chg, ok := charge[n]; ok {
			row.ChgNorm = chg.Capacity / c.capacity
			row.RestEndV = chg.VoltageEnd
			row.PeakTemp = nanMax(chg.TemperaturePeak, dchg.TemperaturePeak)
			if row.ChgNorm > 0 {
				row.Eff = row.DchgNorm / row.ChgNorm
			}
		}
		rows = append(rows, row)
	}

	// Cross-cycle efficiency: next cycle's charge over this cycle's
	// discharge. Undefined for the last row by construction.
	for i := range rows {
		if i+1 < len(rows) && !math.IsNaN(rows[i+1].ChgNorm) && rows[i].DchgNorm > 0 {
			rows[i].Eff2 = rows[i+1].ChgNorm / rows[i].DchgNorm
		}
	}

	c.rows = rows
	c.stage = StageMetricsComputed
	return nil
}

// Format finalizes the output table. The stage exists so enrichment
// (DCIR) can decorate rows between METRICS_COMPUTED and FORMATTED.
func (c *Calculator) Format() ([]CycleRow, error) {
	if err := c.require(StageMetricsComputed); err != nil {
		return nil, err
	}
	c.stage = StageFormatted
	return c.rows, nil
}

// Rows exposes the computed table for enrichment stages.
func (c *Calculator) Rows() []CycleRow { return c.rows }

// MergedSteps exposes the renumbered steps for enrichment stages.
func (c *Calculator) MergedSteps() []MergedStep { return c.merged }

// Run executes every stage in order and returns the formatted table.
func (c *Calculator) Run(records []StepRecord, capacity float64) ([]CycleRow, error) {
	if err := c.ResolveCapacity(capacity); err != nil {
		return nil, err
	}
	if err := c.Merge(records); err != nil {
		return nil, err
	}
	if err := c.RenumberCycles(); err != nil {
		return nil, err
	}
	if err := c.ComputeMetrics(); err != nil {
		return nil, err
	}
	return c.Format()
}

// isVoltageTerminated matches the cycler's voltage end-factor spellings,
// including the fixed-width padded form older firmware writes.
func isVoltageTerminated(endFactor string) bool {
	f := strings.TrimSpace(endFactor)
	return f == "Vol" || f == "Volt"
}

// Warning flags a physically implausible metric value. These indicate a
// reference-capacity or data problem and are surfaced, never silently fixed.
type Warning struct {
	CycleNumber int
	Field       string
	Value       float64
	Reason      string
}

// String returns a readable warning description
func (w Warning) String() string {
	return fmt.Sprintf("cycle %d: %s=%.4f %s", w.CycleNumber, w.Field, w.Value, w.Reason)
}

// CheckPlausibility flags normalized capacities outside [0, 1.5] and
// same-cycle efficiencies outside (0, 1.2].
func CheckPlausibility(rows []CycleRow) []Warning {
	var warnings []Warning
	for _, row := range rows {
		for _, f := range []struct {
			name  string
			value float64
		}{
			{"dchg_capacity_norm", row.DchgNorm},
			{"chg_capacity_norm", row.ChgNorm},
		} {
			if math.IsNaN(f.value) {
				continue
			}
			if f.value < 0 || f.value > 1.5 {
				warnings = append(warnings, Warning{
					CycleNumber: row.CycleNumber,
					Field:       f.name,
					Value:       f.value,
					Reason:      "outside plausible range [0, 1.5]",
				})
			}
		}
		if !math.IsNaN(row.Eff) && (row.Eff <= 0 || row.Eff > 1.2) {
			warnings = append(warnings, Warning{
				CycleNumber: row.CycleNumber,
				Field:       "efficiency_chg_dchg",
				Value:       row.Eff,
				Reason:      "outside plausible range (0, 1.2]",
			})
		}
	}
	return warnings
}
