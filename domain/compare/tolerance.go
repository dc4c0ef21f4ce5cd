package compare

import "github.com/Breezyryu/batter/domain/cycle"

// Tolerance tags name the physical quantity a column carries. Tolerances
// absorb floating-point and evaluation-order differences between
// implementations, not real disagreement.
const (
	TagCapacity    = "capacity"
	TagEfficiency  = "efficiency"
	TagVoltage     = "voltage"
	TagEnergy      = "energy"
	TagTemperature = "temperature"
	TagResistance  = "resistance"
	TagDefault     = "default"
)

// ToleranceSpec maps a quantity tag to a non-negative absolute-difference bound.
type ToleranceSpec map[string]float64

// DefaultTolerances mirrors the bounds the legacy validation harness uses.
func DefaultTolerances() ToleranceSpec {
	return ToleranceSpec{
		TagCapacity:    0.1,   // normalized capacity values
		TagEfficiency:  0.001, // ratio values (0.1%)
		TagVoltage:     0.001, // 1 mV
		TagEnergy:      0.1,   // 0.1 mWh
		TagTemperature: 0.1,   // 0.1 degC
		TagResistance:  0.01,  // 0.01 mOhm
		TagDefault:     0.01,
	}
}

// For returns the bound for a tag, falling back to the default bound.
func (t ToleranceSpec) For(tag string) float64 {
	if v, ok := t[tag]; ok {
		return v
	}
	if v, ok := t[TagDefault]; ok {
		return v
	}
	return 0.01
}

// Column describes one compared CycleRow field: its stable key, the
// tolerance tag governing it, and the accessor pulling the value out.
type Column struct {
	Key string
	Tag string
	Get func(cycle.CycleRow) float64
}

// Columns lists every compared field in stable output order.
func Columns() []Column {
	return []Column{
		{Key: "dchg_capacity_norm", Tag: TagCapacity, Get: func(r cycle.CycleRow) float64 { return r.DchgNorm }},
		{Key: "rest_end_voltage", Tag: TagVoltage, Get: func(r cycle.CycleRow) float64 { return r.RestEndV }},
		{Key: "efficiency_chg_dchg", Tag: TagEfficiency, Get: func(r cycle.CycleRow) float64 { return r.Eff }},
		{Key: "chg_capacity_norm", Tag: TagCapacity, Get: func(r cycle.CycleRow) float64 { return r.ChgNorm }},
		{Key: "dchg_energy", Tag: TagEnergy, Get: func(r cycle.CycleRow) float64 { return r.DchgEnergy }},
		{Key: "efficiency_dchg_chg", Tag: TagEfficiency, Get: func(r cycle.CycleRow) float64 { return r.Eff2 }},
		{Key: "peak_temperature", Tag: TagTemperature, Get: func(r cycle.CycleRow) float64 { return r.PeakTemp }},
		{Key: "avg_voltage", Tag: TagVoltage, Get: func(r cycle.CycleRow) float64 { return r.AvgVoltage }},
		{Key: "resistance_mohm", Tag: TagResistance, Get: func(r cycle.CycleRow) float64 { return r.DCIR }},
		{Key: "original_cycle", Tag: TagDefault, Get: func(r cycle.CycleRow) float64 { return float64(r.OriginalCycle) }},
	}
}
