package wrongbook

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hamexam/backend/internal/models"
)

// Store persists whole ledgers. Save replaces everything stored for the user
// atomically; a failed Save leaves the previous ledger readable.
type Store interface {
	Load(ctx context.Context, userID int64) (*Ledger, error)
	Save(ctx context.Context, userID int64, l *Ledger) error
}

// PostgresStore keeps one row per record in wrong_questions.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context, userID int64) (*Ledger, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, question, wrong_count, correct_count, last_wrong_time
		 FROM wrong_questions WHERE user_id = $1 ORDER BY position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	defer rows.Close()

	l := NewLedger()
	for rows.Next() {
		var id string
		var snapshot []byte
		var r Record
		if err := rows.Scan(&id, &snapshot, &r.WrongCount, &r.CorrectCount, &r.LastWrongTime); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		var q models.Question
		if err := json.Unmarshal(snapshot, &q); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
		}
		r.Question = q
		if err := l.restore(id, r); err != nil {
			return nil, fmt.Errorf("load ledger: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return l, nil
}

// Save deletes the user's rows and re-inserts the ledger in one transaction.
func (s *PostgresStore) Save(ctx context.Context, userID int64, l *Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wrong_questions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	for i, e := range l.Entries() {
		snapshot, err := json.Marshal(e.Question)
		if err != nil {
			return fmt.Errorf("encode snapshot %s: %w", e.QuestionID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO wrong_questions
			 (user_id, question_id, position, question, wrong_count, correct_count, last_wrong_time)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			userID, e.QuestionID, i, snapshot, e.WrongCount, e.CorrectCount, e.LastWrongTime,
		)
		if err != nil {
			return fmt.Errorf("insert ledger row %s: %w", e.QuestionID, err)
		}
	}

	return tx.Commit()
}
