package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/grdflow/internal/db"
	"github.com/gyeh/grdflow/internal/exitcode"
	"github.com/gyeh/grdflow/internal/logging"
	"github.com/gyeh/grdflow/internal/model"
	"github.com/gyeh/grdflow/internal/workflow"
)

var (
	setEpisode  string
	setAT       bool
	setATDetail string
	setATEntry  []string
	setValidado bool
	setDoc      string
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Update role-owned row fields (encoder: AT; finance: validado)",
	RunE:  runSet,
}

func init() {
	f := setCmd.Flags()
	f.StringVar(&cfg.Role, "role", "", "Acting role: encoder or finance (required)")
	f.StringVar(&setEpisode, "episode", "", "Episode number (required)")
	f.BoolVar(&setAT, "at", false, "Encoder: set the technology-adjustment flag")
	f.StringVar(&setATDetail, "at-detail", "", "Encoder: AT detail text (mandatory when --at)")
	f.StringArrayVar(&setATEntry, "at-entry", nil, "Encoder: link an AT catalog code (repeatable)")
	f.BoolVar(&setValidado, "validado", false, "Finance: mark the row validated")
	f.StringVar(&setDoc, "doc", "", "Finance: documentation text")
	_ = setCmd.MarkFlagRequired("role")
	_ = setCmd.MarkFlagRequired("episode")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
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

	m := workflow.New(pool, log)
	role := model.Role(cfg.Role)

	switch role {
	case model.RoleEncoder:
		if err := m.SetEncoderFields(ctx, role, setEpisode, setAT, setATDetail); err != nil {
			log.Error().Err(err).Msg("set encoder fields failed")
			os.Exit(exitFor(err))
		}
		for _, code := range setATEntry {
			if err := m.AddATEntry(ctx, role, setEpisode, code); err != nil {
				log.Error().Err(err).Str("catalog_code", code).Msg("add AT entry failed")
				os.Exit(exitFor(err))
			}
		}
	case model.RoleFinance:
		if err := m.SetFinanceFields(ctx, role, setEpisode, setValidado, setDoc); err != nil {
			log.Error().Err(err).Msg("set finance fields failed")
			os.Exit(exitFor(err))
		}
	default:
		log.Error().Str("role", cfg.Role).Msg("set requires role encoder or finance")
		os.Exit(exitcode.UsageError)
	}

	fmt.Printf("Episode %s updated by %s\n", setEpisode, role)
	return nil
}
