package profile

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Breezyryu/batter/domain/core"
)

// Sample is one time-series point from a per-cycle profile file.
type Sample struct {
	TimeSec      float64
	VoltageV     float64
	CurrentMA    float64
	Condition    int
	TemperatureC float64
}

// IntegrateCapacity accumulates capacity over a time-ordered series of
// (timestamp, current) samples and normalizes the result by the reference
// capacity. The accumulation is rectangular using the interval's trailing
// current:
//
//	cap[i] = cap[i-1] + (t[i] - t[i-1]) * current[i] / 3600
//
// dt is computed per sample, so irregular sampling intervals are handled
// exactly. Pure function: no state, deterministic for identical input.
func IntegrateCapacity(timesSec, currentsMA []float64, referenceCapacity float64) ([]float64, error) {
	if len(timesSec) != len(currentsMA) {
		return nil, core.ErrInsufficientPoints
	}
	if len(timesSec) < 2 {
		return nil, core.ErrInsufficientPoints
	}
	if referenceCapacity <= 0 {
		return nil, core.NewCapacityReferenceError(referenceCapacity)
	}

	contributions := make([]float64, len(timesSec))
	for i := 1; i < len(timesSec); i++ {
		dt := timesSec[i] - timesSec[i-1]
		contributions[i] = dt * currentsMA[i] / 3600
	}
	capacity := make([]float64, len(contributions))
	floats.CumSum(capacity, contributions)

	floats.Scale(1/referenceCapacity, capacity)
	return capacity, nil
}

// DifferentialCapacity computes dQ/dV over a smoothing window. A window of
// 0 requests the automatic width max(1, n/30) the reference tooling uses.
// Points inside the leading window, and points where dV vanishes, are NaN.
func DifferentialCapacity(voltages, capacities []float64, window int) []float64 {
	n := len(voltages)
	if window <= 0 {
		window = n / 30
		if window < 1 {
			window = 1
		}
	}
	dqdv := make([]float64, n)
	for i := range dqdv {
		if i < window {
			dqdv[i] = math.NaN()
			continue
		}
		dv := voltages[i] - voltages[i-window]
		dq := capacities[i] - capacities[i-window]
		if dv == 0 {
			dqdv[i] = math.NaN()
			continue
		}
		dqdv[i] = dq / dv
	}
	return dqdv
}
