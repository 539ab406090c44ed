package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gyeh/grdflow/internal/db"
	"github.com/gyeh/grdflow/internal/exitcode"
	"github.com/gyeh/grdflow/internal/export"
	"github.com/gyeh/grdflow/internal/logging"
	"github.com/gyeh/grdflow/internal/model"
	"github.com/gyeh/grdflow/internal/workflow"
)

var (
	exportOut    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an approved batch to a tabular file (xlsx or parquet)",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&cfg.BatchID, "batch", "", "Batch id (required)")
	f.StringVar(&exportOut, "out", "", "Output file path (required)")
	f.StringVar(&exportFormat, "format", "xlsx", "Output format: xlsx or parquet")
	_ = exportCmd.MarkFlagRequired("batch")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or DATABASE_URL is required")
		os.Exit(exitcode.UsageError)
	}
	batchID, err := uuid.Parse(cfg.BatchID)
	if err != nil {
		log.Error().Err(err).Msg("invalid --batch id")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	rows, err := export.FetchRows(ctx, pool, batchID)
	if err != nil {
		log.Error().Err(err).Msg("export fetch failed")
		os.Exit(exitFor(err))
	}

	switch exportFormat {
	case "xlsx":
		err = export.WriteXLSX(exportOut, rows)
	case "parquet":
		err = export.WriteParquet(exportOut, rows)
	default:
		log.Error().Str("format", exportFormat).Msg("unknown export format")
		os.Exit(exitcode.UsageError)
	}
	if err != nil {
		log.Error().Err(err).Msg("export write failed")
		os.Exit(exitcode.ExportError)
	}

	// First export of an approved batch moves it to the terminal state.
	if len(rows) > 0 && model.State(rows[0].Estado) == model.StateAprobado {
		if err := workflow.New(pool, log).MarkExported(ctx, model.RoleAdmin, batchID); err != nil {
			log.Error().Err(err).Msg("mark exported failed")
			os.Exit(exitFor(err))
		}
	}

	fmt.Printf("Exported %d rows from batch %s to %s\n", len(rows), batchID, exportOut)
	return nil
}
