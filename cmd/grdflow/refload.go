package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/grdflow/internal/db"
	"github.com/gyeh/grdflow/internal/exitcode"
	"github.com/gyeh/grdflow/internal/logging"
	"github.com/gyeh/grdflow/internal/refdata"
)

var refloadCmd = &cobra.Command{
	Use:   "refload",
	Short: "Replace the reference tables from an admin workbook (.xlsx)",
	RunE:  runRefload,
}

func init() {
	f := refloadCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to the reference workbook (required)")
	_ = refloadCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(refloadCmd)
}

func runRefload(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	tables, err := refdata.LoadWorkbook(cfg.FilePath, cfg.Sheets)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse reference workbook")
		os.Exit(exitcode.ValidationError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := refdata.Replace(ctx, pool, log, tables)
	if err != nil {
		log.Error().Err(err).Msg("refload failed")
		os.Exit(exitcode.IngestError)
	}

	fmt.Printf("Reference tables replaced: %d norms, %d tariffs, %d wait payments, %d bands, %d catalog entries (%.1fs)\n",
		summary.NormRows, summary.TariffRows, summary.WaitPaymentRows,
		summary.WeightBandRows, summary.ATCatalogRows, summary.Duration.Seconds())
	return nil
}
