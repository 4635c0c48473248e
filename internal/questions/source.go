package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hamexam/backend/internal/models"
)

// Source loads the question bank at startup.
type Source interface {
	Load(ctx context.Context) ([]models.Question, error)
}

// JSONSource reads a questions.json array.
type JSONSource struct {
	Path string
}

func (s JSONSource) Load(ctx context.Context) ([]models.Question, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	var qs []models.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode questions file %s: %w", s.Path, err)
	}
	return qs, nil
}

// LoadBank builds a Bank from any Source.
func LoadBank(ctx context.Context, src Source) (*Bank, error) {
	qs, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewBank(qs)
}
