package questions

import (
	"fmt"
	"strings"

	"github.com/hamexam/backend/internal/apperr"
	"github.com/hamexam/backend/internal/models"
)

// Bank is the in-memory question bank. It is built once at startup and never
// mutated afterwards, so concurrent readers need no locking.
type Bank struct {
	questions []models.Question
	byID      map[string]int
}

// NewBank validates the questions and keeps them in the given order.
func NewBank(qs []models.Question) (*Bank, error) {
	b := &Bank{
		questions: make([]models.Question, 0, len(qs)),
		byID:      make(map[string]int, len(qs)),
	}
	for i, q := range qs {
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("question %d: duplicate id %q", i+1, q.ID)
		}
		b.byID[q.ID] = len(b.questions)
		b.questions = append(b.questions, q.Clone())
	}
	return b, nil
}

func validateQuestion(q models.Question) error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("empty id")
	}
	if len(q.Options) < 2 || len(q.Options) > 4 {
		return fmt.Errorf("%s: expected 2-4 options, got %d", q.ID, len(q.Options))
	}
	if NormalizeAnswer(q.CorrectAnswer) == "" {
		return fmt.Errorf("%s: empty correct answer", q.ID)
	}
	for _, r := range NormalizeAnswer(q.CorrectAnswer) {
		if !q.HasOption(string(r)) {
			return fmt.Errorf("%s: correct answer %q references missing option %q", q.ID, q.CorrectAnswer, string(r))
		}
	}
	return nil
}

// All returns a copy of every question in insertion order.
func (b *Bank) All() []models.Question {
	out := make([]models.Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.Clone()
	}
	return out
}

func (b *Bank) ByID(id string) (models.Question, error) {
	i, ok := b.byID[id]
	if !ok {
		return models.Question{}, apperr.E(apperr.NotFound, "question %s not found", id)
	}
	return b.questions[i].Clone(), nil
}

// Slice returns positions [from, to) clipped to the bank.
func (b *Bank) Slice(from, to int) []models.Question {
	if from < 0 {
		from = 0
	}
	if to > len(b.questions) {
		to = len(b.questions)
	}
	if from >= to {
		return []models.Question{}
	}
	out := make([]models.Question, 0, to-from)
	for _, q := range b.questions[from:to] {
		out = append(out, q.Clone())
	}
	return out
}

func (b *Bank) Len() int {
	return len(b.questions)
}
