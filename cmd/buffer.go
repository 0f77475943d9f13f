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

var bufferCmd = &cobra.Command{
	Use:   "buffer",
	Short: "Generate trail buffers",
	Long: `Buffers every trail geometry by the configured radius into trail.buffers,
replacing any previous generation. With --union the trail network is
dissolved into a single geometry first, so areas covered by several
trail segments are counted once.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		opts := bufferOptions(cmd)

		return recordRun(ctx, "buffer", func(ctx context.Context) (int64, string, error) {
			n, err := overlap.GenerateBuffers(ctx, pool, opts)
			if err != nil {
				return 0, "", err
			}
			zap.L().Info("buffer generation complete",
				zap.Int64("buffers", n),
				zap.Float64("radius_m", opts.RadiusMeters),
				zap.Bool("union", opts.Union),
			)
			fmt.Printf("Generated %d buffers (radius %.0fm)\n", n, opts.RadiusMeters)
			return n, fmt.Sprintf("radius_m=%.0f union=%t", opts.RadiusMeters, opts.Union), nil
		})
	},
}

// bufferOptions resolves buffer flags against config defaults. Shared with
// the run command.
func bufferOptions(cmd *cobra.Command) overlap.BufferOptions {
	radius, _ := cmd.Flags().GetFloat64("radius")
	if radius == 0 {
		radius = cfg.Buffer.RadiusMeters
	}
	quadSegs, _ := cmd.Flags().GetInt("quad-segments")
	if quadSegs == 0 {
		quadSegs = cfg.Buffer.QuadSegments
	}
	union, _ := cmd.Flags().GetBool("union")

	return overlap.BufferOptions{
		RadiusMeters: radius,
		QuadSegments: quadSegs,
		Union:        union,
	}
}

func addBufferFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("radius", 0, "buffer radius in meters (default: from config or 805)")
	cmd.Flags().Int("quad-segments", 0, "arc approximation segments per quarter circle (default: 8)")
	cmd.Flags().Bool("union", false, "dissolve the trail network before buffering")
}

func init() {
	addBufferFlags(bufferCmd)
	rootCmd.AddCommand(bufferCmd)
}
