package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/grdflow/internal/db"
	"github.com/gyeh/grdflow/internal/exitcode"
	"github.com/gyeh/grdflow/internal/ingest"
	"github.com/gyeh/grdflow/internal/logging"
	"github.com/gyeh/grdflow/internal/sigesa"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a SIGESA episode export (.xlsx) as a new GRD batch",
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to the SIGESA .xlsx export (required)")
	_ = ingestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	episodes, err := sigesa.ReadEpisodes(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to read SIGESA export")
		os.Exit(exitcode.ValidationError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := ingest.Run(ctx, pool, log, &cfg, episodes)
	if err != nil {
		if pe, ok := err.(*ingest.PipelineError); ok {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("ingest failed")
		} else {
			log.Error().Err(err).Msg("ingest failed")
		}
		os.Exit(exitFor(err))
	}

	fmt.Printf("Batch %s created: %d rows ingested, %d dropped (%.1fs)\n",
		summary.BatchID, summary.RowsIngested, summary.RowsDropped,
		summary.DurationTotal.Seconds())
	return nil
}
