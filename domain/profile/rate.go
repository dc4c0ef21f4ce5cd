package profile

import (
	"math"

	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/domain/cycle"
)

// RateConfig parameterizes a single-cycle rate-profile analysis.
type RateConfig struct {
	// Cutoff drops samples whose current falls below Cutoff * capacity
	// (a C-rate threshold). 0 disables the filter.
	Cutoff float64
	// SmoothWindow is the dQ/dV differencing window; 0 selects automatic.
	SmoothWindow int
	// WithDQDV enables the differential-capacity column.
	WithDQDV bool
}

// Point is one normalized rate-profile output row.
type Point struct {
	TimeMin float64 `json:"time_min"`
	SOC     float64 `json:"soc"`
	Voltage float64 `json:"voltage_v"`
	CRate   float64 `json:"crate"`
	Temp    float64 `json:"temperature_c"`
	DQDV    float64 `json:"dqdv,omitempty"`
}

// RateProfile runs the rate-analysis pipeline on one cycle's time series:
// charge-condition filter, current cutoff, capacity integration, then unit
// normalization (seconds to minutes, mA to C-rate, mAh to SOC).
func RateProfile(samples []Sample, referenceCapacity float64, cfg RateConfig) ([]Point, error) {
	if referenceCapacity <= 0 {
		return nil, core.NewCapacityReferenceError(referenceCapacity)
	}

	filtered := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if cycle.ConditionFromCode(s.Condition) != cycle.ConditionCharge {
			continue
		}
		if cfg.Cutoff > 0 && s.CurrentMA < cfg.Cutoff*referenceCapacity {
			continue
		}
		filtered = append(filtered, s)
	}
	if len(filtered) < 2 {
		return nil, core.ErrInsufficientPoints
	}

	times := make([]float64, len(filtered))
	currents := make([]float64, len(filtered))
	voltages := make([]float64, len(filtered))
	for i, s := range filtered {
		times[i] = s.TimeSec
		currents[i] = s.CurrentMA
		voltages[i] = s.VoltageV
	}

	soc, err := IntegrateCapacity(times, currents, referenceCapacity)
	if err != nil {
		return nil, err
	}

	var dqdv []float64
	if cfg.WithDQDV {
		dqdv = DifferentialCapacity(voltages, soc, cfg.SmoothWindow)
	}

	points := make([]Point, len(filtered))
	for i, s := range filtered {
		points[i] = Point{
			TimeMin: s.TimeSec / 60,
			SOC:     soc[i],
			Voltage: s.VoltageV,
			CRate:   s.CurrentMA / referenceCapacity,
			Temp:    s.TemperatureC,
			DQDV:    math.NaN(),
		}
		if dqdv != nil {
			points[i].DQDV = dqdv[i]
		}
	}
	return points, nil
}
