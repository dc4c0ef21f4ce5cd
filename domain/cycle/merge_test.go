package cycle

import (
	"math"
	"testing"
)

func TestMergeSteps_ConsecutiveSameKey(t *testing.T) {
	// Three consecutive discharge segments of the same cycle collapse into
	// one step with summed capacity and energy.
	records := []StepRecord{
		{CycleIndex: 7, Condition: ConditionDischarge, Capacity: 10, Energy: 35, VoltageEnd: 3.9, VoltagePeak: 4.1, VoltageMin: 3.8, TemperaturePeak: 25.0, EndFactor: "Cur"},
		{CycleIndex: 7, Condition: ConditionDischarge, Capacity: 20, Energy: 70, VoltageEnd: 3.6, VoltagePeak: 4.0, VoltageMin: 3.5, TemperaturePeak: 26.2, EndFactor: "Cur"},
		{CycleIndex: 7, Condition: ConditionDischarge, Capacity: 30, Energy: 105, VoltageEnd: 3.2, VoltagePeak: 3.9, VoltageMin: 3.0, TemperaturePeak: 27.4, EndFactor: "Volt"},
	}

	merged := MergeSteps(records)
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged step, got %d", len(merged))
	}

	m := merged[0]
	if m.Capacity != 60 {
		t.Errorf("capacity: expected 60, got %v", m.Capacity)
	}
	if m.Energy != 210 {
		t.Errorf("energy: expected 210, got %v", m.Energy)
	}
	if m.VoltageEnd != 3.2 {
		t.Errorf("voltage end should come from the last record: got %v", m.VoltageEnd)
	}
	if m.TemperaturePeak != 27.4 {
		t.Errorf("temperature should come from the last record: got %v", m.TemperaturePeak)
	}
	if m.VoltagePeak != 4.1 {
		t.Errorf("voltage peak should be the run maximum: got %v", m.VoltagePeak)
	}
	if m.VoltageMin != 3.0 {
		t.Errorf("voltage min should be the run minimum: got %v", m.VoltageMin)
	}
	if m.EndFactor != "Volt" {
		t.Errorf("end factor should come from the last record: got %q", m.EndFactor)
	}
	if m.Records != 3 {
		t.Errorf("expected 3 collapsed records, got %d", m.Records)
	}
}

func TestMergeSteps_OnlyConsecutiveRunsCombine(t *testing.T) {
	// A,A,B,A within one cycle yields two separate A steps: merging never
	// reaches across an intervening different-condition step.
	records := []StepRecord{
		{CycleIndex: 1, Condition: ConditionCharge, Capacity: 100},
		{CycleIndex: 1, Condition: ConditionCharge, Capacity: 200},
		{CycleIndex: 1, Condition: ConditionRest, Capacity: 0},
		{CycleIndex: 1, Condition: ConditionCharge, Capacity: 50},
	}

	merged := MergeSteps(records)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged steps, got %d", len(merged))
	}
	if merged[0].Condition != ConditionCharge || merged[0].Capacity != 300 {
		t.Errorf("first run: expected charge 300, got %s %v", merged[0].Condition, merged[0].Capacity)
	}
	if merged[1].Condition != ConditionRest {
		t.Errorf("expected rest in the middle, got %s", merged[1].Condition)
	}
	if merged[2].Condition != ConditionCharge || merged[2].Capacity != 50 {
		t.Errorf("second charge run: expected 50, got %v", merged[2].Capacity)
	}
}

func TestMergeSteps_CycleBoundarySplits(t *testing.T) {
	records := []StepRecord{
		{CycleIndex: 1, Condition: ConditionDischarge, Capacity: 500},
		{CycleIndex: 2, Condition: ConditionDischarge, Capacity: 490},
	}
	merged := MergeSteps(records)
	if len(merged) != 2 {
		t.Fatalf("same condition across a cycle boundary must not merge: got %d steps", len(merged))
	}
}

func TestMergeSteps_Idempotent(t *testing.T) {
	records := []StepRecord{
		{CycleIndex: 1, Condition: ConditionCharge, Capacity: 100, Energy: 400},
		{CycleIndex: 1, Condition: ConditionCharge, Capacity: 150, Energy: 560},
		{CycleIndex: 1, Condition: ConditionDischarge, Capacity: 240, Energy: 880},
		{CycleIndex: 2, Condition: ConditionCharge, Capacity: 245, Energy: 900},
	}

	once := MergeSteps(records)
	twice := MergeMerged(once)
	if len(once) != len(twice) {
		t.Fatalf("re-merge changed step count: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("step %d changed on re-merge: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestMergeSteps_NaNExtremaIgnored(t *testing.T) {
	nan := math.NaN()
	records := []StepRecord{
		{CycleIndex: 1, Condition: ConditionDischarge, Capacity: 10, VoltagePeak: nan, VoltageMin: 3.5, CurrentPeak: 900},
		{CycleIndex: 1, Condition: ConditionDischarge, Capacity: 10, VoltagePeak: 4.2, VoltageMin: nan, CurrentPeak: nan},
	}
	merged := MergeSteps(records)
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged step, got %d", len(merged))
	}
	if merged[0].VoltagePeak != 4.2 {
		t.Errorf("NaN operand should not poison the peak: got %v", merged[0].VoltagePeak)
	}
	if merged[0].VoltageMin != 3.5 {
		t.Errorf("NaN operand should not poison the min: got %v", merged[0].VoltageMin)
	}
	if merged[0].CurrentPeak != 900 {
		t.Errorf("NaN operand should not poison the current peak: got %v", merged[0].CurrentPeak)
	}
}

func TestMergeSteps_Empty(t *testing.T) {
	if got := MergeSteps(nil); len(got) != 0 {
		t.Errorf("expected empty output for empty input, got %d steps", len(got))
	}
}
