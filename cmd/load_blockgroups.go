package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trailshed/internal/shape"
)

var loadBlockGroupsCmd = &cobra.Command{
	Use:   "blockgroups",
	Short: "Load Census block-group shapefiles",
	Long: `Downloads TIGER/Line block-group shapefiles from census.gov and loads them
into trail.block_groups. By default loads all 50 states + DC.
Use --states to restrict to specific states.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		log := zap.L().With(zap.String("command", "load.blockgroups"))

		statesStr, _ := cmd.Flags().GetString("states")
		year, _ := cmd.Flags().GetInt("year")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		incremental, _ := cmd.Flags().GetBool("incremental")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		opts := shape.LoadOptions{
			SRID:        cfg.Projection.SRID,
			Year:        year,
			TempDir:     cfg.Census.TempDir,
			Concurrency: concurrency,
			RatePerSec:  cfg.Census.RatePerSec,
			Incremental: incremental,
			DryRun:      dryRun,
		}

		if statesStr != "" {
			opts.States = shape.NormalizeStates(statesStr)
		} else if len(cfg.Census.States) > 0 {
			opts.States = cfg.Census.States
		}

		if opts.Year == 0 {
			opts.Year = cfg.Census.Year
		}
		if opts.Concurrency == 0 {
			opts.Concurrency = cfg.Census.Concurrency
		}

		log.Info("starting block group load",
			zap.Int("year", opts.Year),
			zap.Strings("states", opts.States),
			zap.Bool("incremental", opts.Incremental),
			zap.Bool("dry_run", opts.DryRun),
			zap.Int("concurrency", opts.Concurrency),
		)

		return recordRun(ctx, "load-blockgroups", func(ctx context.Context) (int64, string, error) {
			if err := shape.LoadBlockGroups(ctx, pool, opts); err != nil {
				return 0, "", err
			}
			fmt.Println("Block group load complete")
			detail := fmt.Sprintf("year=%d states=%d", opts.Year, len(opts.States))
			return 0, detail, nil
		})
	},
}

func init() {
	loadBlockGroupsCmd.Flags().String("states", "", "comma-separated state abbreviations (default: all 50 + DC)")
	loadBlockGroupsCmd.Flags().Int("year", 0, "TIGER/Line year (default: from config or 2024)")
	loadBlockGroupsCmd.Flags().Bool("incremental", true, "skip already-loaded state/year combos")
	loadBlockGroupsCmd.Flags().Bool("dry-run", false, "download and validate without loading")
	loadBlockGroupsCmd.Flags().Int("concurrency", 0, "parallel state downloads (default: from config or 3)")
	loadCmd.AddCommand(loadBlockGroupsCmd)
}
