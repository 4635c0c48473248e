package main

import (
	"fmt"
	"os"

	"github.com/hamexam/backend/internal/config"
	"github.com/hamexam/backend/internal/wrongbook"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLedgerCmd(log *zap.SugaredLogger) *cobra.Command {
	var (
		input       string
		backend     string
		dataDir     string
		defaultUser int64
	)

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Import a legacy wrong_questions.json into per-user ledgers",
		Long: "Accepts both the single global layout and the per-user layout.\n" +
			"Global files are assigned to --default-user. Records already answered\n" +
			"correctly three times are dropped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			if defaultUser < 1 {
				return fmt.Errorf("--default-user must be a positive user id")
			}
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read legacy file: %w", err)
			}

			var store wrongbook.Store
			switch backend {
			case config.LedgerBackendFile:
				fs, err := wrongbook.NewFileStore(dataDir)
				if err != nil {
					return err
				}
				store = fs
			case config.LedgerBackendPostgres:
				db, err := openDB(cmd)
				if err != nil {
					return err
				}
				defer db.Close()
				store = wrongbook.NewPostgresStore(db)
			default:
				return fmt.Errorf("--backend must be %q or %q", config.LedgerBackendPostgres, config.LedgerBackendFile)
			}

			report, err := wrongbook.ImportLegacy(cmd.Context(), store, data, defaultUser)
			if err != nil {
				return err
			}
			log.Infow("legacy ledger imported",
				"users", report.Users,
				"records", report.Records,
				"retired", report.Retired,
				"backend", backend,
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to the legacy wrong_questions.json")
	cmd.Flags().StringVar(&backend, "backend", config.LedgerBackendPostgres, "Ledger backend: postgres or file")
	cmd.Flags().StringVar(&dataDir, "data-dir", "data/ledgers", "Ledger directory for the file backend")
	cmd.Flags().Int64Var(&defaultUser, "default-user", 1, "Owner of records from a global-layout file")
	return cmd
}
