package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trailshed/internal/income"
)

var loadIncomeCmd = &cobra.Command{
	Use:   "income <file>",
	Short: "Load the household income table",
	Long: `Reads a household income table (CSV or XLSX) keyed by block-group GEOID,
validates bracket counts, and upserts into trail.income. The format is
inferred from the file extension unless --format is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path := args[0]
		format, _ := cmd.Flags().GetString("format")
		sheet, _ := cmd.Flags().GetString("sheet")

		if format == "" {
			switch strings.ToLower(filepath.Ext(path)) {
			case ".xlsx":
				format = "xlsx"
			default:
				format = "csv"
			}
		}

		var records []income.Record
		var err error
		switch format {
		case "csv":
			records, err = income.ReadCSV(path, cfg.Income.SumTolerance)
		case "xlsx":
			records, err = income.ReadXLSX(path, income.XLSXOptions{SheetName: sheet}, cfg.Income.SumTolerance)
		default:
			return eris.Errorf("unknown format %q (want csv or xlsx)", format)
		}
		if err != nil {
			return err
		}

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		return recordRun(ctx, "load-income", func(ctx context.Context) (int64, string, error) {
			n, err := income.Load(ctx, pool, records)
			if err != nil {
				return 0, "", err
			}
			zap.L().Info("income load complete", zap.Int64("rows", n))
			fmt.Printf("Loaded %d income records\n", n)
			return n, path, nil
		})
	},
}

func init() {
	loadIncomeCmd.Flags().String("format", "", "input format: csv or xlsx (default: by extension)")
	loadIncomeCmd.Flags().String("sheet", "", "sheet name for xlsx input (default: first sheet)")
	loadCmd.AddCommand(loadIncomeCmd)
}
