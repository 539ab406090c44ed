package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gyeh/grdflow/internal/db"
	"github.com/gyeh/grdflow/internal/exitcode"
	"github.com/gyeh/grdflow/internal/logging"
	"github.com/gyeh/grdflow/internal/model"
	"github.com/gyeh/grdflow/internal/workflow"
)

var (
	reviewAction string
	reviewReason string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Approve or reject a batch pending admin review",
	RunE:  runReview,
}

func init() {
	f := reviewCmd.Flags()
	f.StringVar(&cfg.BatchID, "batch", "", "Batch id (required)")
	f.StringVar(&reviewAction, "action", "", "approve or reject (required)")
	f.StringVar(&reviewReason, "reason", "", "Optional rejection reason, stored on the rows")
	_ = reviewCmd.MarkFlagRequired("batch")
	_ = reviewCmd.MarkFlagRequired("action")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
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

	m := workflow.New(pool, log)
	err = m.Review(ctx, model.RoleAdmin, batchID, workflow.ReviewAction(reviewAction), reviewReason)
	if err != nil {
		log.Error().Err(err).Msg("review failed")
		os.Exit(exitFor(err))
	}

	fmt.Printf("Batch %s: %s\n", batchID, reviewAction)
	return nil
}
