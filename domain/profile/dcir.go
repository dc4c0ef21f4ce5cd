package profile

import (
	"math"
	"strings"

	"github.com/Breezyryu/batter/domain/cycle"
)

// PulseResistance derives direct-current internal resistance from one
// per-cycle pulse detail series:
//
//	R = (Vmax - Vmin) / round(Imax) * 1e6   [mOhm]
//
// Only the discharge section of the pulse contributes. Returns NaN when
// the series has no discharge samples or the peak current rounds to zero.
func PulseResistance(samples []Sample) float64 {
	vMax := math.Inf(-1)
	vMin := math.Inf(1)
	iMax := math.Inf(-1)
	seen := false
	for _, s := range samples {
		if cycle.ConditionFromCode(s.Condition) != cycle.ConditionDischarge {
			continue
		}
		seen = true
		if s.VoltageV > vMax {
			vMax = s.VoltageV
		}
		if s.VoltageV < vMin {
			vMin = s.VoltageV
		}
		if s.CurrentMA > iMax {
			iMax = s.CurrentMA
		}
	}
	if !seen {
		return math.NaN()
	}
	peak := math.Round(iMax)
	if peak == 0 {
		return math.NaN()
	}
	return (vMax - vMin) / peak * 1e6
}

// IsPulseStep reports whether a merged summary step is a DCIR measurement
// pulse: a time-terminated discharge whose capacity sits below the noise
// floor (referenceCapacity / 60).
func IsPulseStep(s cycle.MergedStep, referenceCapacity float64) bool {
	if s.Condition != cycle.ConditionDischarge {
		return false
	}
	if s.Capacity >= referenceCapacity/60 {
		return false
	}
	f := strings.TrimSpace(s.EndFactor)
	return f == "Tim" || f == "Time"
}
