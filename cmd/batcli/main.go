package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/Breezyryu/batter/adapters/excel"
	"github.com/Breezyryu/batter/adapters/postgres"
	"github.com/Breezyryu/batter/adapters/report"
	"github.com/Breezyryu/batter/adapters/toyo"
	"github.com/Breezyryu/batter/app"
	"github.com/Breezyryu/batter/domain/compare"
	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/internal/config"
	"github.com/Breezyryu/batter/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "batcli",
		Short: "Battery cycle metrics pipeline and validation harness",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newCompareCmd(),
		newChannelsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		capacityMAh float64
		firstCRate  float64
		checkIR     bool
		xlsxOut     string
		asJSON      bool
		project     string
	)

	cmd := &cobra.Command{
		Use:   "analyze [channel-dir]",
		Short: "Compute per-cycle metrics for one channel folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cycle.RunConfig{
				RawPath:    args[0],
				Capacity:   capacityMAh,
				FirstCRate: firstCRate,
				CheckIR:    checkIR,
			}

			store, err := openPersistence()
			if err != nil {
				return err
			}
			defer store.close()

			ctx := context.Background()
			service := app.NewAnalysisService(store.cycles)
			source := toyo.NewSource(cfg.RawPath, cfg)
			result, err := service.Run(ctx, source, cfg)
			if err != nil {
				return err
			}
			if err := store.register(ctx, project, filepath.Base(cfg.RawPath), result, cfg); err != nil {
				return err
			}

			if xlsxOut != "" {
				if err := excel.WriteCycleTable(xlsxOut, result.Capacity, result.Rows); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", xlsxOut)
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(result)
			}
			fmt.Println(report.RenderRunMarkdown(result))
			return nil
		},
	}

	cmd.Flags().Float64Var(&capacityMAh, "capacity", 0, "reference capacity in mAh (0 = auto)")
	cmd.Flags().Float64Var(&firstCRate, "first-crate", 0.2, "first-cycle C-rate for auto capacity")
	cmd.Flags().BoolVar(&checkIR, "check-ir", false, "enable DCIR enrichment from pulse files")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "write the cycle table to an xlsx file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the result as JSON")
	cmd.Flags().StringVar(&project, "project", "default", "test project to register the run under")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var (
		capacityMAh float64
		firstCRate  float64
		checkIR     bool
		asHTML      bool
		tolerances  []string
	)

	cmd := &cobra.Command{
		Use:   "compare [reference-dir] [candidate-dir]",
		Short: "Validate a candidate channel's metrics against a reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cycle.RunConfig{
				Capacity:   capacityMAh,
				FirstCRate: firstCRate,
				CheckIR:    checkIR,
			}

			spec := compare.DefaultTolerances()
			for _, override := range tolerances {
				if err := applyToleranceOverride(spec, override); err != nil {
					return err
				}
			}

			store, err := openPersistence()
			if err != nil {
				return err
			}
			defer store.close()

			service := app.NewComparisonService(app.NewAnalysisService(nil), store.reports)
			refCfg := cfg
			refCfg.RawPath = args[0]
			candCfg := cfg
			candCfg.RawPath = args[1]

			verdict, err := service.ComparePair(
				context.Background(),
				toyo.NewSource(args[0], refCfg),
				toyo.NewSource(args[1], candCfg),
				cfg, spec,
			)
			if err != nil {
				return err
			}

			if asHTML {
				fmt.Println(report.RenderVerdictHTML(verdict))
			} else {
				fmt.Println(report.RenderVerdictMarkdown(verdict))
			}
			if !verdict.Passed {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&capacityMAh, "capacity", 0, "reference capacity in mAh (0 = auto)")
	cmd.Flags().Float64Var(&firstCRate, "first-crate", 0.2, "first-cycle C-rate for auto capacity")
	cmd.Flags().BoolVar(&checkIR, "check-ir", false, "enable DCIR enrichment from pulse files")
	cmd.Flags().BoolVar(&asHTML, "html", false, "render the report as HTML")
	cmd.Flags().StringArrayVar(&tolerances, "tolerance", nil, "tolerance override tag=value (e.g. capacity=0.1)")
	return cmd
}

func newChannelsCmd() *cobra.Command {
	var (
		capacityMAh float64
		firstCRate  float64
		checkIR     bool
		parallel    int
		project     string
	)

	cmd := &cobra.Command{
		Use:   "channels [raw-root]",
		Short: "Analyze every channel folder under a raw-data root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cycle.RunConfig{
				Capacity:   capacityMAh,
				FirstCRate: firstCRate,
				CheckIR:    checkIR,
			}

			store, err := openPersistence()
			if err != nil {
				return err
			}
			defer store.close()

			runner := app.NewChannelRunner(app.NewAnalysisService(store.cycles))
			if parallel > 0 {
				runner.MaxParallel = parallel
			}
			ctx := context.Background()
			results, err := runner.RunAll(ctx, args[0], cfg)
			if err != nil {
				return err
			}
			for channel, result := range results {
				channelCfg := cfg
				channelCfg.RawPath = filepath.Join(args[0], channel)
				if err := store.register(ctx, project, channel, result, channelCfg); err != nil {
					return err
				}
				s := report.Summarize(result.Capacity, result.Rows)
				fmt.Printf("channel %s: %d cycles, %.1f mAh, mean dchg %.4f, mean eff %.2f%%\n",
					channel, s.Cycles, s.CapacityMAh, s.MeanDchgNorm, s.MeanEfficiency*100)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&capacityMAh, "capacity", 0, "reference capacity in mAh (0 = auto)")
	cmd.Flags().Float64Var(&firstCRate, "first-crate", 0.2, "first-cycle C-rate for auto capacity")
	cmd.Flags().BoolVar(&checkIR, "check-ir", false, "enable DCIR enrichment from pulse files")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "max concurrent channel runs (0 = default)")
	cmd.Flags().StringVar(&project, "project", "default", "test project to register the runs under")
	return cmd
}

// persistence bundles the optional postgres-backed repositories. All fields
// are nil when no DATABASE_URL is configured; the pipeline then runs
// in-memory only.
type persistence struct {
	cycles    ports.CycleRepository
	reports   ports.ReportRepository
	registrar *app.RunRegistrar
	close     func()
}

func openPersistence() (*persistence, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.Database.Enabled {
		return &persistence{close: func() {}}, nil
	}
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &persistence{
		cycles:    postgres.NewCycleRepository(db),
		reports:   postgres.NewReportRepository(db),
		registrar: app.NewRunRegistrar(postgres.NewProjectRepository(db), postgres.NewRunRepository(db)),
		close:     func() { db.Close() },
	}, nil
}

func (p *persistence) register(ctx context.Context, project, channel string, result *cycle.RunResult, cfg cycle.RunConfig) error {
	if p.registrar == nil {
		return nil
	}
	return p.registrar.Register(ctx, project, channel, result, cfg)
}

func applyToleranceOverride(spec compare.ToleranceSpec, override string) error {
	tag, raw, ok := strings.Cut(override, "=")
	if !ok || tag == "" {
		return fmt.Errorf("bad tolerance override %q (want tag=value)", override)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("bad tolerance override %q: %w", override, err)
	}
	if value < 0 {
		return fmt.Errorf("tolerance for %s must be non-negative", tag)
	}
	spec[tag] = value
	return nil
}
