package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/hamexam/backend/internal/database"
	"github.com/hamexam/backend/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	log, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := newRootCmd(log).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(log *zap.SugaredLogger) *cobra.Command {
	root := &cobra.Command{
		Use:          "importer",
		Short:        "Load question exports and legacy wrong-question files",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (defaults to DATABASE_URL)")

	root.AddCommand(newQuestionsCmd(log))
	root.AddCommand(newLedgerCmd(log))
	return root
}

// openDB connects and migrates using the --dsn flag.
func openDB(cmd *cobra.Command) (*sql.DB, error) {
	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		return nil, fmt.Errorf("--dsn or DATABASE_URL is required for the postgres target")
	}
	db, err := database.Connect(dsn)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
