package toyo

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/domain/profile"
	"github.com/Breezyryu/batter/internal/pathutil"
	"github.com/Breezyryu/batter/ports"
)

// Source implements ports.CycleSource for Toyo channel folders.
type Source struct {
	channelDir string
	cfg        cycle.RunConfig
}

// NewSource creates a cycle source rooted at one Toyo channel folder.
func NewSource(channelDir string, cfg cycle.RunConfig) *Source {
	return &Source{channelDir: channelDir, cfg: cfg}
}

var _ ports.CycleSource = (*Source)(nil)

// ResolveReferenceCapacity applies the Toyo capacity resolution order:
// explicit config value, then a capacity token in the path, then
// round(max first-cycle current / first C-rate).
func (s *Source) ResolveReferenceCapacity(ctx context.Context) (float64, error) {
	if s.cfg.Capacity > 0 {
		return s.cfg.Capacity, nil
	}

	if strings.Contains(s.channelDir, "mAh") {
		if named := pathutil.CapacityFromName(s.channelDir); named > 0 {
			log.Printf("[ToyoSource] capacity %.1f mAh from path name", named)
			return named, nil
		}
	}

	rate := s.cfg.FirstCRate
	if rate <= 0 {
		rate = 0.2
	}
	samples, err := ReadPulseFile(s.channelDir, 1)
	if err != nil {
		return 0, fmt.Errorf("read first-cycle profile: %w", err)
	}
	peak := math.Inf(-1)
	for _, sample := range samples {
		if sample.CurrentMA > peak {
			peak = sample.CurrentMA
		}
	}
	if math.IsInf(peak, -1) || peak <= 0 {
		return 0, fmt.Errorf("cannot resolve capacity for %s: no usable first-cycle current", s.channelDir)
	}
	capacity := math.Round(peak / rate)
	log.Printf("[ToyoSource] capacity %.0f mAh from first-cycle current %.1f mA at %.2fC", capacity, peak, rate)
	return capacity, nil
}

// LoadSteps reads and validates the capacity.log summary table.
func (s *Source) LoadSteps(ctx context.Context) ([]cycle.StepRecord, error) {
	table, err := ReadCapacityLog(s.channelDir)
	if err != nil {
		return nil, err
	}
	records, err := cycle.ParseSteps(table)
	if err != nil {
		return nil, fmt.Errorf("parse %s capacity log: %w", s.channelDir, err)
	}
	return records, nil
}

// LoadPulse reads the per-cycle pulse detail series.
func (s *Source) LoadPulse(ctx context.Context, originalCycle int) ([]profile.Sample, error) {
	return ReadPulseFile(s.channelDir, originalCycle)
}
