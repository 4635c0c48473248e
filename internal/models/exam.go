package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hamexam/backend/internal/jsonobj"
)

type ExamKind string

const (
	ExamRandom   ExamKind = "random"
	ExamRanged   ExamKind = "ranged"
	ExamRemedial ExamKind = "remedial"
)

// Exam is ephemeral; it is never persisted.
type Exam struct {
	ID        string
	Kind      ExamKind
	Questions []Question
}

// AnswerSubmission is one answered question from a submitted exam.
type AnswerSubmission struct {
	QuestionID string
	RawAnswer  string
}

// AnswerSet keeps the answers object in document order. A plain map would
// grade submissions in random order. Each question appears at most once.
type AnswerSet []AnswerSubmission

func (a *AnswerSet) UnmarshalJSON(data []byte) error {
	fields, err := jsonobj.Fields(data)
	if err != nil {
		return fmt.Errorf("answers: %w", err)
	}

	out := make(AnswerSet, 0, len(fields))
	for _, f := range fields {
		out = append(out, AnswerSubmission{QuestionID: f.Key, RawAnswer: coerceAnswer(f.Value)})
	}
	*a = out
	return nil
}

// Unique collapses repeated question IDs: the first position is kept and the
// last answer wins.
func (a AnswerSet) Unique() AnswerSet {
	out := make(AnswerSet, 0, len(a))
	index := make(map[string]int, len(a))
	for _, s := range a {
		if i, ok := index[s.QuestionID]; ok {
			out[i].RawAnswer = s.RawAnswer
			continue
		}
		index[s.QuestionID] = len(out)
		out = append(out, s)
	}
	return out
}

func (a AnswerSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(s.QuestionID)
		v, _ := json.Marshal(s.RawAnswer)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// coerceAnswer accepts "AC", ["A","C"], null, or a scalar.
func coerceAnswer(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []string
	if err := json.Unmarshal(raw, &parts); err == nil {
		return strings.Join(parts, "")
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

// ── Request Types ────────────────────────────────────────

type SubmitExamRequest struct {
	ExamID  string    `json:"exam_id"`
	Answers AnswerSet `json:"answers"`
}

// ── Response Types ────────────────────────────────────────

type ExamResponse struct {
	ExamID    string     `json:"exam_id"`
	Questions []Question `json:"questions"`
}

type CustomExamResponse struct {
	ExamID      string     `json:"exam_id"`
	Questions   []Question `json:"questions"`
	StartID     int        `json:"start_id"`
	ActualCount int        `json:"actual_count"`
}

type PracticeExamResponse struct {
	ExamID    string     `json:"exam_id"`
	Questions []Question `json:"questions"`
	Type      string     `json:"type"`
}

type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

type GradedQuestion struct {
	QuestionID    string `json:"question_id"`
	QuestionText  string `json:"question_text"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	WrongCount    int    `json:"wrong_count,omitempty"`
}

type UpdateAction string

const (
	ActionCorrect UpdateAction = "correct"
	ActionWrong   UpdateAction = "wrong"
	ActionRemoved UpdateAction = "removed"
)

// LedgerUpdate reports what grading did to one ledger record.
type LedgerUpdate struct {
	QuestionID   string       `json:"question_id"`
	Action       UpdateAction `json:"action"`
	WrongCount   *int         `json:"wrong_count,omitempty"`
	CorrectCount *int         `json:"correct_count,omitempty"`
}

type SubmitExamResponse struct {
	ExamID           string           `json:"exam_id"`
	Total            int              `json:"total"`
	CorrectCount     int              `json:"correct_count"`
	Score            int              `json:"score"`
	SkippedCount     int              `json:"skipped_count"`
	WrongQuestions   []GradedQuestion `json:"wrong_questions"`
	CorrectQuestions []GradedQuestion `json:"correct_questions"`
	Results          []QuestionResult `json:"results"`
}

type SubmitPracticeResponse struct {
	SubmitExamResponse
	UpdatedQuestions []LedgerUpdate `json:"updated_questions"`
}
