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

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the batch to the next stage (encoder → finance, finance → admin)",
	RunE:  runSubmit,
}

func init() {
	f := submitCmd.Flags()
	f.StringVar(&cfg.Role, "role", "", "Acting role: encoder or finance (required)")
	f.StringVar(&cfg.BatchID, "batch", "", "Batch id (required)")
	_ = submitCmd.MarkFlagRequired("role")
	_ = submitCmd.MarkFlagRequired("batch")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
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
	role := model.Role(cfg.Role)

	switch role {
	case model.RoleEncoder:
		err = m.SubmitToFinance(ctx, role, batchID)
	case model.RoleFinance:
		err = m.SubmitToAdmin(ctx, role, batchID)
	default:
		log.Error().Str("role", cfg.Role).Msg("submit requires role encoder or finance")
		os.Exit(exitcode.UsageError)
	}
	if err != nil {
		log.Error().Err(err).Msg("submit failed")
		os.Exit(exitFor(err))
	}

	fmt.Printf("Batch %s submitted by %s\n", batchID, role)
	return nil
}
