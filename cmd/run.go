package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trailshed/internal/overlap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the buffer, overlap, and report stages in sequence",
	Long: `Runs the analysis pipeline end to end against already-loaded data:
generates buffers, computes prorated overlaps, and renders the income
distribution chart. Load trails, block groups, and income first.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		log := zap.L().With(zap.String("command", "run"))
		opts := bufferOptions(cmd)

		var records []overlap.Record
		err = recordRun(ctx, "run", func(ctx context.Context) (int64, string, error) {
			n, err := overlap.GenerateBuffers(ctx, pool, opts)
			if err != nil {
				return 0, "", err
			}
			log.Info("buffers generated", zap.Int64("buffers", n))

			records, err = overlap.Compute(ctx, pool)
			if err != nil {
				return 0, "", err
			}
			rows, err := overlap.Persist(ctx, pool, records)
			if err != nil {
				return 0, "", err
			}
			log.Info("overlaps persisted", zap.Int64("rows", rows))

			detail := fmt.Sprintf("buffers=%d radius_m=%.0f union=%t", n, opts.RadiusMeters, opts.Union)
			return rows, detail, nil
		})
		if err != nil {
			return err
		}

		return renderReport(cmd, records)
	},
}

func init() {
	addBufferFlags(runCmd)
	addReportFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
