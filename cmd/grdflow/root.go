package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/grdflow/internal/config"
	"github.com/gyeh/grdflow/internal/exitcode"
	"github.com/gyeh/grdflow/internal/refdata"
	"github.com/gyeh/grdflow/internal/workflow"
)

var (
	cfg     config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "grdflow",
	Short: "GRD billing-adjustment workflow: SIGESA ingest, pricing, approval pipeline",
	Long: "Ingests SIGESA episode exports, derives GRD pricing fields from the " +
		"reference tables, and routes each batch through the Encoder → Finance → Admin " +
		"approval pipeline before export.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg.Sheets = refdata.DefaultSheetNames()
		if cfgFile != "" {
			return cfg.LoadFromFile(cfgFile)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfgFile, "config", "", "Optional YAML config file (sheet names, plan codes)")
}

// exitFor maps workflow/ingest error categories to process exit codes.
func exitFor(err error) int {
	var (
		forbidden  *workflow.ForbiddenError
		guard      *workflow.GuardError
		validation *workflow.ValidationError
		conflict   *workflow.ConflictError
		notFound   *workflow.NotFoundError
	)
	switch {
	case errors.As(err, &conflict):
		return exitcode.ConflictError
	case errors.As(err, &forbidden), errors.As(err, &guard):
		return exitcode.GuardError
	case errors.As(err, &validation), errors.As(err, &notFound):
		return exitcode.ValidationError
	default:
		return exitcode.IngestError
	}
}
