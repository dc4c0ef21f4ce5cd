package app

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/domain/profile"
	"github.com/Breezyryu/batter/internal/testkit"
)

func TestAnalysisService_FullRun(t *testing.T) {
	// 103 identical charge/discharge pairs at known quantities. The charge
	// of the first pair precedes the first discharge and is dropped by
	// renumbering, so row 1 has discharge metrics only.
	spec := testkit.DefaultPairSpec()
	source := &testkit.Source{
		CapacityMAh: 1689,
		Records:     testkit.GenerateCyclePairs(103, spec),
	}

	service := NewAnalysisService(nil)
	result, err := service.Run(context.Background(), source, cycle.RunConfig{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	assert.Equal(t, 1689.0, result.Capacity)
	assert.Len(t, result.Rows, 103)

	first := result.Rows[0]
	assert.Equal(t, 1, first.CycleNumber)
	assert.True(t, math.IsNaN(first.ChgNorm), "cycle 1 charge precedes the first discharge")
	assert.True(t, math.IsNaN(first.Eff))

	for i, row := range result.Rows {
		assert.Equal(t, i+1, row.CycleNumber)
		assert.InDelta(t, spec.DischargeMAh/1689, row.DchgNorm, 1e-12, "row %d discharge norm", i)
		assert.InDelta(t, spec.EnergyMWh, row.DchgEnergy, 1e-9, "row %d energy", i)
		if i > 0 {
			assert.InDelta(t, spec.Efficiency, row.Eff, 1e-12, "row %d efficiency", i)
			assert.InDelta(t, spec.RestVoltage, row.RestEndV, 1e-12, "row %d rest voltage", i)
		}
	}
}

func TestAnalysisService_PersistsRows(t *testing.T) {
	source := &testkit.Source{
		CapacityMAh: 1689,
		Records:     testkit.GenerateCyclePairs(5, testkit.DefaultPairSpec()),
	}
	repo := testkit.NewCycleRepo()

	result, err := NewAnalysisService(repo).Run(context.Background(), source, cycle.RunConfig{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	stored, err := repo.ListByRun(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("list stored rows: %v", err)
	}
	assert.Len(t, stored, len(result.Rows))
}

func TestAnalysisService_CapacityFailureAborts(t *testing.T) {
	source := &testkit.Source{
		CapacityErr: core.NewCapacityReferenceError(0),
		Records:     testkit.GenerateCyclePairs(3, testkit.DefaultPairSpec()),
	}
	result, err := NewAnalysisService(nil).Run(context.Background(), source, cycle.RunConfig{})
	assert.Error(t, err)
	assert.Nil(t, result, "aborted run must not expose partial output")
}

func TestAnalysisService_DCIREnrichment(t *testing.T) {
	spec := testkit.DefaultPairSpec()
	records := testkit.GenerateCyclePairs(3, spec)

	// Cycle 2 gets a time-terminated pulse discharge below the noise floor,
	// separated from the real discharge by a rest step so they don't merge.
	records = append(records,
		cycle.StepRecord{CycleIndex: 2, Condition: cycle.ConditionRest},
		cycle.StepRecord{CycleIndex: 2, Condition: cycle.ConditionDischarge, Capacity: 5, Energy: 19, EndFactor: "Tim"},
	)

	// Pulse detail: 0.5 V window at a 5000 mA peak is exactly 100 mOhm.
	pulse := []profile.Sample{
		{TimeSec: 0, VoltageV: 4.2, CurrentMA: 4990, Condition: 2},
		{TimeSec: 1, VoltageV: 3.9, CurrentMA: 5000, Condition: 2},
		{TimeSec: 2, VoltageV: 3.7, CurrentMA: 4995, Condition: 2},
	}
	source := &testkit.Source{
		CapacityMAh: 1689,
		Records:     records,
		Pulses:      map[int][]profile.Sample{2: pulse},
	}

	result, err := NewAnalysisService(nil).Run(context.Background(), source, cycle.RunConfig{CheckIR: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var enriched *cycle.CycleRow
	for i := range result.Rows {
		if result.Rows[i].OriginalCycle == 2 {
			enriched = &result.Rows[i]
		} else {
			assert.True(t, math.IsNaN(result.Rows[i].DCIR), "cycle %d has no pulse", result.Rows[i].CycleNumber)
		}
	}
	if enriched == nil {
		t.Fatal("no row for original cycle 2")
	}
	assert.InDelta(t, 100.0, enriched.DCIR, 1e-9)
	assert.InDelta(t, spec.DischargeMAh/1689, enriched.DchgNorm, 1e-12,
		"the pulse must not displace the real discharge metrics")
}

func TestAnalysisService_DCIRDisabledByDefault(t *testing.T) {
	records := append(testkit.GenerateCyclePairs(2, testkit.DefaultPairSpec()),
		cycle.StepRecord{CycleIndex: 2, Condition: cycle.ConditionRest},
		cycle.StepRecord{CycleIndex: 2, Condition: cycle.ConditionDischarge, Capacity: 5, EndFactor: "Tim"},
	)
	source := &testkit.Source{
		CapacityMAh: 1689,
		Records:     records,
		Pulses: map[int][]profile.Sample{
			2: {{VoltageV: 4.2, CurrentMA: 5000, Condition: 2}, {VoltageV: 3.7, CurrentMA: 5000, Condition: 2}},
		},
	}

	result, err := NewAnalysisService(nil).Run(context.Background(), source, cycle.RunConfig{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, row := range result.Rows {
		assert.True(t, math.IsNaN(row.DCIR), "enrichment must stay off without CheckIR")
	}
}
