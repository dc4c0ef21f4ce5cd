package profile

import (
	"math"
	"testing"

	"github.com/Breezyryu/batter/domain/cycle"
)

func TestPulseResistance(t *testing.T) {
	// Discharge section spans 4.2 V down to 3.7 V at a 5000 mA peak:
	// R = 0.5 / 5000 * 1e6 = 100 mOhm.
	samples := []Sample{
		{TimeSec: 0, VoltageV: 4.25, CurrentMA: 0, Condition: 3},
		{TimeSec: 1, VoltageV: 4.2, CurrentMA: 4990, Condition: 2},
		{TimeSec: 2, VoltageV: 3.9, CurrentMA: 5000, Condition: 2},
		{TimeSec: 3, VoltageV: 3.7, CurrentMA: 4995, Condition: 2},
		{TimeSec: 4, VoltageV: 4.0, CurrentMA: 1200, Condition: 1},
	}

	r := PulseResistance(samples)
	if math.Abs(r-100) > 1e-9 {
		t.Errorf("expected 100 mOhm, got %v", r)
	}
}

func TestPulseResistance_OnlyDischargeContributes(t *testing.T) {
	// The rest sample's 4.25 V must not widen the voltage window.
	withRest := []Sample{
		{VoltageV: 4.25, CurrentMA: 0, Condition: 3},
		{VoltageV: 4.0, CurrentMA: 2000, Condition: 2},
		{VoltageV: 3.8, CurrentMA: 2000, Condition: 2},
	}
	onlyDischarge := withRest[1:]
	if PulseResistance(withRest) != PulseResistance(onlyDischarge) {
		t.Errorf("non-discharge samples must not affect the result")
	}
}

func TestPulseResistance_Undefined(t *testing.T) {
	noDischarge := []Sample{
		{VoltageV: 4.2, CurrentMA: 1000, Condition: 1},
		{VoltageV: 4.25, CurrentMA: 0, Condition: 3},
	}
	if r := PulseResistance(noDischarge); !math.IsNaN(r) {
		t.Errorf("no discharge samples: expected NaN, got %v", r)
	}

	zeroCurrent := []Sample{
		{VoltageV: 4.0, CurrentMA: 0.2, Condition: 2},
		{VoltageV: 3.9, CurrentMA: 0.1, Condition: 2},
	}
	if r := PulseResistance(zeroCurrent); !math.IsNaN(r) {
		t.Errorf("peak current rounding to zero: expected NaN, got %v", r)
	}
}

func TestIsPulseStep(t *testing.T) {
	refCap := 1689.0

	cases := []struct {
		name string
		step cycle.MergedStep
		want bool
	}{
		{
			name: "time terminated small discharge",
			step: cycle.MergedStep{Condition: cycle.ConditionDischarge, Capacity: 5, EndFactor: "Tim"},
			want: true,
		},
		{
			name: "long end factor spelling",
			step: cycle.MergedStep{Condition: cycle.ConditionDischarge, Capacity: 5, EndFactor: " Time "},
			want: true,
		},
		{
			name: "full discharge is not a pulse",
			step: cycle.MergedStep{Condition: cycle.ConditionDischarge, Capacity: 1600, EndFactor: "Tim"},
			want: false,
		},
		{
			name: "charge never qualifies",
			step: cycle.MergedStep{Condition: cycle.ConditionCharge, Capacity: 5, EndFactor: "Tim"},
			want: false,
		},
		{
			name: "voltage terminated discharge is not a pulse",
			step: cycle.MergedStep{Condition: cycle.ConditionDischarge, Capacity: 5, EndFactor: "Volt"},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPulseStep(tc.step, refCap); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
