package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hamexam/backend/internal/models"
	"github.com/hamexam/backend/internal/parser"
	"github.com/hamexam/backend/internal/questions"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newQuestionsCmd(log *zap.SugaredLogger) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Parse a [I]/[Q]/[T] text export into the question bank",
		Long: "Parses the tagged text export. Writes questions.json when --output is set,\n" +
			"otherwise replaces the contents of the questions table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read export: %w", err)
			}

			qs, errs := parser.Parse(string(data))
			for _, e := range errs {
				log.Warnw("skipped question block", "path", input, "error", e)
			}
			// Same validation the server applies at startup.
			bank, err := questions.NewBank(qs)
			if err != nil {
				return err
			}

			if output != "" {
				if err := writeQuestionsJSON(output, bank.All()); err != nil {
					return err
				}
				log.Infow("questions written", "path", output, "questions", bank.Len(), "skipped", len(errs))
				return nil
			}

			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := questions.NewStore(db).ReplaceAll(cmd.Context(), bank.All()); err != nil {
				return err
			}
			log.Infow("questions imported", "questions", bank.Len(), "skipped", len(errs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to the text export")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write questions.json here instead of the database")
	return cmd
}

func writeQuestionsJSON(path string, qs []models.Question) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(qs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write questions file: %w", err)
	}
	return nil
}
