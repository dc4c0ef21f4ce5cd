package cycle

import (
	"math"
	"strconv"
	"strings"

	"github.com/Breezyryu/batter/domain/core"
)

// Canonical column names for step tables. Vendor adapters map their own
// headers onto these before the table enters the pipeline.
const (
	ColCycle       = "cycle"
	ColCondition   = "condition"
	ColCapacity    = "capacity_mah"
	ColEnergy      = "energy_mwh"
	ColVoltageEnd  = "voltage_end_v"
	ColVoltagePeak = "voltage_peak_v"
	ColVoltageMin  = "voltage_min_v"
	ColCurrentPeak = "current_peak_ma"
	ColPeakTemp    = "peak_temp_c"
	ColAvgVoltage  = "avg_voltage_v"
	ColEndFactor   = "end_factor"
	ColMode        = "mode"
)

// requiredColumns must be present and numeric in every step table.
var requiredColumns = []string{ColCycle, ColCondition, ColCapacity, ColEnergy}

// optionalNumeric columns parse to NaN when empty.
var optionalNumeric = []string{
	ColVoltageEnd, ColVoltagePeak, ColVoltageMin,
	ColCurrentPeak, ColPeakTemp, ColAvgVoltage,
}

// RawTable is an ordered tabular log as delivered by an ingestion adapter.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of a column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ParseSteps validates an ordered table and turns it into StepRecords,
// preserving row order. Rows with all-null optional fields are retained
// with those fields NaN; a missing required column or a non-numeric value
// in a numeric column is a malformed-input error carrying the row index.
func ParseSteps(table *RawTable) ([]StepRecord, error) {
	idx := make(map[string]int, len(table.Columns))
	for _, name := range requiredColumns {
		i := table.ColumnIndex(name)
		if i < 0 {
			return nil, core.NewMissingColumnError(name)
		}
		idx[name] = i
	}
	for _, name := range optionalNumeric {
		idx[name] = table.ColumnIndex(name)
	}
	endFactorIdx := table.ColumnIndex(ColEndFactor)
	modeIdx := table.ColumnIndex(ColMode)

	records := make([]StepRecord, 0, len(table.Rows))
	for rowNum, row := range table.Rows {
		cycleIdx, err := parseRequiredInt(row, idx[ColCycle], rowNum, ColCycle)
		if err != nil {
			return nil, err
		}
		condCode, err := parseRequiredInt(row, idx[ColCondition], rowNum, ColCondition)
		if err != nil {
			return nil, err
		}
		capacity, err := parseRequiredFloat(row, idx[ColCapacity], rowNum, ColCapacity)
		if err != nil {
			return nil, err
		}
		energy, err := parseRequiredFloat(row, idx[ColEnergy], rowNum, ColEnergy)
		if err != nil {
			return nil, err
		}

		rec := StepRecord{
			CycleIndex:      cycleIdx,
			Condition:       ConditionFromCode(condCode),
			Capacity:        capacity,
			Energy:          energy,
			VoltageEnd:      parseOptionalFloat(row, idx[ColVoltageEnd]),
			VoltagePeak:     parseOptionalFloat(row, idx[ColVoltagePeak]),
			VoltageMin:      parseOptionalFloat(row, idx[ColVoltageMin]),
			CurrentPeak:     parseOptionalFloat(row, idx[ColCurrentPeak]),
			TemperaturePeak: parseOptionalFloat(row, idx[ColPeakTemp]),
			AvgVoltage:      parseOptionalFloat(row, idx[ColAvgVoltage]),
		}
		if endFactorIdx >= 0 && endFactorIdx < len(row) {
			rec.EndFactor = strings.TrimSpace(row[endFactorIdx])
		}
		if modeIdx >= 0 && modeIdx < len(row) {
			rec.Mode = strings.TrimSpace(row[modeIdx])
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRequiredInt(row []string, col, rowNum int, name string) (int, error) {
	if col >= len(row) {
		return 0, core.NewNonNumericError(rowNum, name, "")
	}
	raw := strings.TrimSpace(row[col])
	v, err := strconv.Atoi(raw)
	if err != nil {
		// Some cyclers emit integer columns as "12.0"
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, core.NewNonNumericError(rowNum, name, raw)
		}
		v = int(f)
	}
	return v, nil
}

func parseRequiredFloat(row []string, col, rowNum int, name string) (float64, error) {
	if col >= len(row) {
		return 0, core.NewNonNumericError(rowNum, name, "")
	}
	raw := strings.TrimSpace(row[col])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, core.NewNonNumericError(rowNum, name, raw)
	}
	return v, nil
}

func parseOptionalFloat(row []string, col int) float64 {
	if col < 0 || col >= len(row) {
		return math.NaN()
	}
	raw := strings.TrimSpace(row[col])
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
