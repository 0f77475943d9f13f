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

var loadTrailsCmd = &cobra.Command{
	Use:   "trails <shapefile>",
	Short: "Load a trail network shapefile",
	Long: `Parses a local trail-network shapefile (.shp with its .dbf sidecar) and
loads it into trail.trails, replacing any previous load. Geometries are
transformed into the working planar SRID after loading.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		srid, _ := cmd.Flags().GetInt("srid")
		if srid == 0 {
			srid = cfg.Projection.SRID
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		opts := shape.LoadOptions{
			SRID:   srid,
			DryRun: dryRun,
		}

		return recordRun(ctx, "load-trails", func(ctx context.Context) (int64, string, error) {
			n, err := shape.LoadTrails(ctx, pool, args[0], opts)
			if err != nil {
				return 0, "", err
			}
			zap.L().Info("trail load complete", zap.Int64("rows", n))
			fmt.Printf("Loaded %d trail segments\n", n)
			return n, args[0], nil
		})
	},
}

func init() {
	loadTrailsCmd.Flags().Int("srid", 0, "working planar SRID (default: from config or 5070)")
	loadTrailsCmd.Flags().Bool("dry-run", false, "parse and validate without loading")
	loadCmd.AddCommand(loadTrailsCmd)
}
