package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/trailshed/internal/db"
	"github.com/sells-group/trailshed/internal/shape"
)

// statusTables are the trail schema tables reported by the status command,
// in display order.
var statusTables = []string{"trails", "block_groups", "income", "buffers", "overlaps"}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline data status",
	Long:  "Shows per-table row counts and the shapefile load history.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := printTableCounts(ctx, pool); err != nil {
			return err
		}
		fmt.Println()
		return printLoadStatus(ctx, pool)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// printTableCounts displays row counts for every trail schema table.
func printTableCounts(ctx context.Context, pool db.Pool) error {
	fmt.Printf("%-15s %12s\n", "Table", "Rows")
	fmt.Println(strings.Repeat("-", 28))

	for _, table := range statusTables {
		var count int64
		row := pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM trail.%s", table))
		if err := row.Scan(&count); err != nil {
			return eris.Wrapf(err, "status: count trail.%s", table)
		}
		fmt.Printf("%-15s %12d\n", table, count)
	}
	return nil
}

// printLoadStatus displays the shapefile load history.
func printLoadStatus(ctx context.Context, pool db.Pool) error {
	status, err := shape.LoadStatus(ctx, pool)
	if err != nil {
		return eris.Wrap(err, "status: get load status")
	}

	if len(status) == 0 {
		fmt.Println("No shapefiles loaded yet")
		return nil
	}

	fmt.Printf("%-14s %-6s %-6s %10s %12s %s\n",
		"Layer", "FIPS", "Year", "Rows", "Duration", "Loaded At")
	fmt.Println(strings.Repeat("-", 70))

	for _, s := range status {
		fmt.Printf("%-14s %-6s %-6d %10d %10dms %s\n",
			s.Layer, s.StateFIPS, s.Year,
			s.RowCount, s.DurationMs, s.LoadedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
