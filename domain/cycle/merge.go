package cycle

import "math"

// MergeSteps collapses strictly consecutive runs of StepRecords sharing the
// same (cycle index, condition) into single MergedSteps. Capacity and energy
// are summed across the run; voltage_end and temperature take the last
// record's value, while voltage peak/min take the run's extrema because the
// DCIR path reads them downstream.
//
// Merging never reorders steps, and only strictly consecutive records
// combine: a condition sequence A,A,B,A within one cycle yields two separate
// merged A steps. The reference cycler tooling behaves this way, so the
// behavior is kept for output parity even though it looks like an artifact.
func MergeSteps(records []StepRecord) []MergedStep {
	merged := make([]MergedStep, 0, len(records))
	for _, rec := range records {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.CycleIndex == rec.CycleIndex && last.Condition == rec.Condition {
				last.Capacity += rec.Capacity
				last.Energy += rec.Energy
				last.VoltageEnd = rec.VoltageEnd
				last.TemperaturePeak = rec.TemperaturePeak
				last.VoltagePeak = nanMax(last.VoltagePeak, rec.VoltagePeak)
				last.VoltageMin = nanMin(last.VoltageMin, rec.VoltageMin)
				last.CurrentPeak = nanMax(last.CurrentPeak, rec.CurrentPeak)
				last.EndFactor = rec.EndFactor
				last.Records++
				continue
			}
		}
		merged = append(merged, MergedStep{
			CycleIndex:      rec.CycleIndex,
			OriginalCycle:   rec.CycleIndex,
			Condition:       rec.Condition,
			Capacity:        rec.Capacity,
			Energy:          rec.Energy,
			VoltageEnd:      rec.VoltageEnd,
			VoltagePeak:     rec.VoltagePeak,
			VoltageMin:      rec.VoltageMin,
			CurrentPeak:     rec.CurrentPeak,
			TemperaturePeak: rec.TemperaturePeak,
			EndFactor:       rec.EndFactor,
			Records:         1,
		})
	}
	return merged
}

// MergeMerged re-merges an already merged sequence. On a sequence where no
// two consecutive steps share a key this is the identity, which makes
// MergeSteps idempotent.
func MergeMerged(steps []MergedStep) []MergedStep {
	merged := make([]MergedStep, 0, len(steps))
	for _, s := range steps {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.CycleIndex == s.CycleIndex && last.Condition == s.Condition {
				last.Capacity += s.Capacity
				last.Energy += s.Energy
				last.VoltageEnd = s.VoltageEnd
				last.TemperaturePeak = s.TemperaturePeak
				last.VoltagePeak = nanMax(last.VoltagePeak, s.VoltagePeak)
				last.VoltageMin = nanMin(last.VoltageMin, s.VoltageMin)
				last.CurrentPeak = nanMax(last.CurrentPeak, s.CurrentPeak)
				last.EndFactor = s.EndFactor
				last.Records += s.Records
				continue
			}
		}
		merged = append(merged, s)
	}
	return merged
}

// nanMax returns the larger of a and b, ignoring NaN operands.
func nanMax(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Max(a, b)
}

// nanMin returns the smaller of a and b, ignoring NaN operands.
func nanMin(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Min(a, b)
}
