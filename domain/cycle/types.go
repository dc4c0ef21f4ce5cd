package cycle

import (
	"math"

	"github.com/Breezyryu/batter/domain/core"
)

// Condition identifies what the instrument was doing during a logged step.
// Codes follow the cycler's convention: 1 = charge, 2 = discharge, 3 = rest.
type Condition int

const (
	ConditionOther     Condition = 0
	ConditionCharge    Condition = 1
	ConditionDischarge Condition = 2
	ConditionRest      Condition = 3
)

// ConditionFromCode maps a raw instrument condition code onto the enum.
// Unknown codes collapse to ConditionOther rather than failing the row.
func ConditionFromCode(code int) Condition {
	switch code {
	case 1:
		return ConditionCharge
	case 2:
		return ConditionDischarge
	case 3:
		return ConditionRest
	default:
		return ConditionOther
	}
}

// String returns a readable condition name
func (c Condition) String() string {
	switch c {
	case ConditionCharge:
		return "charge"
	case ConditionDischarge:
		return "discharge"
	case ConditionRest:
		return "rest"
	default:
		return "other"
	}
}

// StepRecord is one row of raw instrument output, immutable once parsed.
// Missing optional measurements are NaN, never zero.
type StepRecord struct {
	CycleIndex      int       `json:"cycle_index"`
	Condition       Condition `json:"condition"`
	Capacity        float64   `json:"capacity_mah"`
	Energy          float64   `json:"energy_mwh"`
	VoltageEnd      float64   `json:"voltage_end_v"`
	VoltagePeak     float64   `json:"voltage_peak_v"`
	VoltageMin      float64   `json:"voltage_min_v"`
	CurrentPeak     float64   `json:"current_peak_ma"`
	TemperaturePeak float64   `json:"temperature_peak_c"`
	AvgVoltage      float64   `json:"avg_voltage_v"`
	// EndFactor is the instrument's step-termination reason ("Volt", "Time", ...).
	// Used to exclude voltage-terminated charge steps and to detect DCIR pulses.
	EndFactor string `json:"end_factor"`
	Mode      string `json:"mode"`
}

// MergedStep aggregates one or more consecutive StepRecords sharing
// (cycle index, condition). The underlying records are contiguous in
// original order; merging never reorders steps.
type MergedStep struct {
	CycleIndex      int
	OriginalCycle   int
	Condition       Condition
	Capacity        float64
	Energy          float64
	VoltageEnd      float64
	VoltagePeak     float64
	VoltageMin      float64
	CurrentPeak     float64
	TemperaturePeak float64
	EndFactor       string
	// Records counts how many raw steps were collapsed into this one.
	Records int
}

// CycleRow is the per-cycle output unit of the metrics pipeline.
// Undefined quantities are NaN; they survive serialization as nulls.
type CycleRow struct {
	CycleNumber   int     `json:"cycle_number"`
	OriginalCycle int     `json:"original_cycle"`
	ChgNorm       float64 `json:"chg_capacity_norm"`
	DchgNorm      float64 `json:"dchg_capacity_norm"`
	Eff           float64 `json:"efficiency_chg_dchg"`
	Eff2          float64 `json:"efficiency_dchg_chg"`
	DchgEnergy    float64 `json:"dchg_energy_mwh"`
	RestEndV      float64 `json:"rest_end_voltage_v"`
	AvgVoltage    float64 `json:"avg_voltage_v"`
	PeakTemp      float64 `json:"peak_temperature_c"`
	DCIR          float64 `json:"resistance_mohm"`
}

// NewCycleRow returns a row with every metric undefined.
func NewCycleRow(cycleNumber, originalCycle int) CycleRow {
	nan := math.NaN()
	return CycleRow{
		CycleNumber:   cycleNumber,
		OriginalCycle: originalCycle,
		ChgNorm:       nan,
		DchgNorm:      nan,
		Eff:           nan,
		Eff2:          nan,
		DchgEnergy:    nan,
		RestEndV:      nan,
		AvgVoltage:    nan,
		PeakTemp:      nan,
		DCIR:          nan,
	}
}

// RunConfig carries everything one pipeline invocation needs.
// There is no process-global state: each run owns its config and data.
type RunConfig struct {
	RawPath string
	// Capacity is the reference capacity in mAh; 0 requests auto-resolution.
	Capacity float64
	// FirstCRate is the C-rate of the first cycle, used for auto capacity.
	FirstCRate float64
	// CheckIR enables the DCIR enrichment side path.
	CheckIR bool
}

// RunResult is the terminal output of one analysis run.
type RunResult struct {
	RunID core.RunID
	// Capacity is the resolved reference capacity (mAh), fixed for the run.
	Capacity float64
	Rows     []CycleRow
	Metadata map[string]interface{}
}
