package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Breezyryu/batter/adapters/toyo"
	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/internal"
	"github.com/Breezyryu/batter/internal/pathutil"
)

// ChannelRunner fans one analysis run out per channel folder. Runs share no
// mutable intermediate state, so they parallelize without locking; the only
// shared structure is the result map, guarded while collecting.
type ChannelRunner struct {
	analysis *AnalysisService
	logger   *internal.Logger
	// MaxParallel bounds concurrent channel runs; 0 means unbounded.
	MaxParallel int
}

// NewChannelRunner creates a channel runner.
func NewChannelRunner(analysis *AnalysisService) *ChannelRunner {
	return &ChannelRunner{
		analysis:    analysis,
		logger:      internal.DefaultLogger.WithComponent("Channels"),
		MaxParallel: 4,
	}
}

// RunAll analyzes every channel folder under a raw-data root. Failing one
// channel cancels the remaining runs; no partial per-channel table leaks
// out of a cancelled run.
func (r *ChannelRunner) RunAll(ctx context.Context, rawRoot string, cfg cycle.RunConfig) (map[string]*cycle.RunResult, error) {
	cyclerType := pathutil.DetectCyclerType(rawRoot)
	if cyclerType != pathutil.CyclerToyo {
		return nil, fmt.Errorf("cycler type %s is detected but not supported for loading", cyclerType)
	}

	channels, err := pathutil.ChannelFolders(rawRoot, cyclerType)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("no channel folders under %s", rawRoot)
	}
	r.logger.Info("%d channels under %s", len(channels), rawRoot)

	g, gctx := errgroup.WithContext(ctx)
	if r.MaxParallel > 0 {
		g.SetLimit(r.MaxParallel)
	}

	var mu sync.Mutex
	results := make(map[string]*cycle.RunResult, len(channels))

	for _, channel := range channels {
		g.Go(func() error {
			channelCfg := cfg
			channelCfg.RawPath = filepath.Join(rawRoot, channel)
			source := toyo.NewSource(channelCfg.RawPath, channelCfg)

			result, err := r.analysis.Run(gctx, source, channelCfg)
			if err != nil {
				return fmt.Errorf("channel %s: %w", channel, err)
			}
			mu.Lock()
			results[channel] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
