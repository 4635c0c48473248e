package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hamexam/backend/internal/models"
)

// Store is the Postgres-backed question table. It doubles as a Source.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load returns every question ordered by import position.
func (s *Store) Load(ctx context.Context) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question_text, correct_answer, options
		 FROM questions ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var qs []models.Question
	for rows.Next() {
		var q models.Question
		var opts []byte
		if err := rows.Scan(&q.ID, &q.Text, &q.CorrectAnswer, &opts); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(opts, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options for %s: %w", q.ID, err)
		}
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return qs, nil
}

// ReplaceAll swaps the whole bank in one transaction. Positions follow the
// slice order.
func (s *Store) ReplaceAll(ctx context.Context, qs []models.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO questions (id, position, question_text, correct_answer, options)
		 VALUES ($1, $2, $3, $4, $5)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, q := range qs {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encode options for %s: %w", q.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, q.ID, i, q.Text, q.CorrectAnswer, opts); err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}

	return tx.Commit()
}
