package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/grdflow/internal/db"
	"github.com/gyeh/grdflow/internal/exitcode"
	"github.com/gyeh/grdflow/internal/logging"
	"github.com/gyeh/grdflow/internal/workflow"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the batch currently holding the active workflow slot",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or DATABASE_URL is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	active, err := workflow.New(pool, log).Active(ctx)
	if err != nil {
		log.Error().Err(err).Msg("active-workflow query failed")
		os.Exit(exitcode.IngestError)
	}

	if !active.HasActiveWorkflow {
		fmt.Println("No active workflow; a new export may be ingested.")
		return nil
	}
	fmt.Printf("Active batch %s in state %q\n", active.BatchID, active.Estado)
	return nil
}
