// Package parser extracts questions from the delimited text export of the
// licensing question bank:
//
//	[I]MC1-0001[Q]Question text[T]A[A]first[B]second[C]third[D]fourth
//
// Every block starts at [I]. A field runs from its tag to the next tag or the
// end of the line, whichever comes first.
package parser

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/hamexam/backend/internal/models"
	"go.uber.org/zap"
)

var tagPattern = regexp.MustCompile(`\[([IQTABCD])\]`)

var optionKeys = []string{"A", "B", "C", "D"}

// BlockError describes a block that was skipped.
type BlockError struct {
	Block  int // 1-based position of the block in the document
	ID     string
	Reason string
}

func (e *BlockError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("block %d (%s): %s", e.Block, e.ID, e.Reason)
	}
	return fmt.Sprintf("block %d: %s", e.Block, e.Reason)
}

// Parse returns the valid questions in document order along with one
// BlockError per skipped block.
func Parse(text string) ([]models.Question, []error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var questions []models.Question
	var errs []error

	for i, block := range splitBlocks(text) {
		q, err := parseBlock(block)
		if err != nil {
			err.Block = i + 1
			errs = append(errs, err)
			continue
		}
		questions = append(questions, q)
	}
	return questions, errs
}

// splitBlocks cuts the text at every [I] tag. Anything before the first one
// is page furniture and is dropped.
func splitBlocks(text string) []string {
	var starts []int
	for _, loc := range tagPattern.FindAllStringSubmatchIndex(text, -1) {
		if text[loc[2]:loc[3]] == "I" {
			starts = append(starts, loc[0])
		}
	}

	blocks := make([]string, 0, len(starts))
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		blocks = append(blocks, text[start:end])
	}
	return blocks
}

func parseBlock(block string) (models.Question, *BlockError) {
	fields := make(map[string]string)
	locs := tagPattern.FindAllStringSubmatchIndex(block, -1)
	for i, loc := range locs {
		tag := block[loc[2]:loc[3]]
		if _, seen := fields[tag]; seen {
			continue
		}
		end := len(block)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := block[loc[1]:end]
		if nl := strings.IndexByte(value, '\n'); nl >= 0 {
			value = value[:nl]
		}
		fields[tag] = strings.TrimSpace(value)
	}

	q := models.Question{
		ID:            fields["I"],
		Text:          fields["Q"],
		CorrectAnswer: strings.ToUpper(strings.ReplaceAll(fields["T"], " ", "")),
	}
	for _, key := range optionKeys {
		if text := fields[key]; text != "" {
			q.Options = append(q.Options, models.Option{Key: key, Text: text})
		}
	}

	switch {
	case q.ID == "":
		return q, &BlockError{Reason: "missing id"}
	case q.Text == "":
		return q, &BlockError{ID: q.ID, Reason: "missing question text"}
	case q.CorrectAnswer == "":
		return q, &BlockError{ID: q.ID, Reason: "missing answer"}
	case len(q.Options) < 2:
		return q, &BlockError{ID: q.ID, Reason: fmt.Sprintf("need at least 2 options, got %d", len(q.Options))}
	}
	for _, r := range q.CorrectAnswer {
		if !q.HasOption(string(r)) {
			return q, &BlockError{ID: q.ID, Reason: fmt.Sprintf("answer %q references missing option %q", q.CorrectAnswer, string(r))}
		}
	}
	return q, nil
}

// TextSource loads the bank from a text export file.
type TextSource struct {
	Path string
	Log  *zap.SugaredLogger
}

func (s TextSource) Load(ctx context.Context) ([]models.Question, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read text export: %w", err)
	}

	qs, errs := Parse(string(data))
	if s.Log != nil {
		for _, e := range errs {
			s.Log.Warnw("skipped question block", "path", s.Path, "error", e)
		}
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("no questions found in %s", s.Path)
	}
	return qs, nil
}
