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

var overlapCmd = &cobra.Command{
	Use:   "overlap",
	Short: "Compute buffer/block-group overlaps",
	Long: `Intersects every trail buffer with every block group it touches, computes
the areal overlap fraction, prorates household income counts by that
fraction, and persists the result into trail.overlaps.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		return recordRun(ctx, "overlap", func(ctx context.Context) (int64, string, error) {
			records, err := overlap.Compute(ctx, pool)
			if err != nil {
				return 0, "", err
			}
			n, err := overlap.Persist(ctx, pool, records)
			if err != nil {
				return 0, "", err
			}
			zap.L().Info("overlap computation complete", zap.Int64("rows", n))
			fmt.Printf("Computed %d overlap records\n", n)
			return n, "", nil
		})
	},
}

func init() {
	rootCmd.AddCommand(overlapCmd)
}
