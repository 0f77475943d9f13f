package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/trailshed/internal/overlap"
	"github.com/sells-group/trailshed/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Chart the income distribution near trails",
	Long: `Aggregates the persisted overlap records into per-bracket household
counts, sorted by income lower bound, and renders a bar chart: text to
stdout by default, or a standalone SVG with --svg.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		records, err := overlap.Load(ctx, pool)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No overlap records found; run `trailshed overlap` first.")
			return nil
		}

		return renderReport(cmd, records)
	},
}

// renderReport aggregates and renders overlap records per the report flags.
// Shared with the run command.
func renderReport(cmd *cobra.Command, records []overlap.Record) error {
	bars, err := report.Distribution(records)
	if err != nil {
		return err
	}

	svgPath, _ := cmd.Flags().GetString("svg")
	if svgPath != "" {
		f, err := os.Create(svgPath)
		if err != nil {
			return eris.Wrapf(err, "report: create %s", svgPath)
		}
		defer f.Close() //nolint:errcheck

		title, _ := cmd.Flags().GetString("title")
		if err := report.RenderSVG(f, bars, title); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", svgPath)
		return nil
	}

	width, _ := cmd.Flags().GetInt("width")
	return report.RenderText(os.Stdout, bars, width)
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("svg", "", "write an SVG chart to this path instead of text output")
	cmd.Flags().String("title", "Households near trails by income bracket", "SVG chart title")
	cmd.Flags().Int("width", 0, "text chart bar width in characters (default: 60)")
}

func init() {
	addReportFlags(reportCmd)
	rootCmd.AddCommand(reportCmd)
}
