package exam

import (
	"time"

	"github.com/hamexam/backend/internal/models"
	"github.com/hamexam/backend/internal/questions"
	"github.com/hamexam/backend/internal/wrongbook"
)

type Mode int

const (
	// ModeFresh grades against the live question bank.
	ModeFresh Mode = iota
	// ModeRemedial grades against the ledger's frozen snapshots.
	ModeRemedial
)

// Resolver looks questions up for fresh grading.
type Resolver interface {
	ByID(id string) (models.Question, error)
}

type GradeResult struct {
	Total            int
	CorrectCount     int
	Skipped          int
	Results          []models.QuestionResult
	WrongQuestions   []models.GradedQuestion
	CorrectQuestions []models.GradedQuestion
	Updates          []models.LedgerUpdate
}

// Score is the floored percentage of correct answers; 0 for an empty submission.
func (g GradeResult) Score() int {
	if g.Total == 0 {
		return 0
	}
	return g.CorrectCount * 100 / g.Total
}

// Grade evaluates the submissions in order and applies the ledger
// transitions to l. A question answered more than once counts once, with its
// last answer. It never fails: unresolvable IDs are counted in Skipped and
// produce no result entry. Persisting l is the caller's job.
func Grade(subs models.AnswerSet, bank Resolver, l *wrongbook.Ledger, now time.Time, mode Mode) GradeResult {
	subs = subs.Unique()
	res := GradeResult{
		Total:            len(subs),
		Results:          []models.QuestionResult{},
		WrongQuestions:   []models.GradedQuestion{},
		CorrectQuestions: []models.GradedQuestion{},
		Updates:          []models.LedgerUpdate{},
	}

	for _, sub := range subs {
		q, ok := resolve(sub.QuestionID, bank, l, mode)
		if !ok {
			res.Skipped++
			continue
		}

		correct := questions.IsCorrect(sub.RawAnswer, q.CorrectAnswer)
		res.Results = append(res.Results, models.QuestionResult{
			QuestionID:    sub.QuestionID,
			UserAnswer:    sub.RawAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
		})
		graded := models.GradedQuestion{
			QuestionID:    sub.QuestionID,
			QuestionText:  q.Text,
			UserAnswer:    sub.RawAnswer,
			CorrectAnswer: q.CorrectAnswer,
		}

		if correct {
			res.CorrectCount++
			res.CorrectQuestions = append(res.CorrectQuestions, graded)

			d := l.RecordHit(sub.QuestionID)
			if !d.Present {
				continue
			}
			if mode == ModeRemedial && d.Retired {
				res.Updates = append(res.Updates, models.LedgerUpdate{QuestionID: sub.QuestionID, Action: models.ActionRemoved})
				continue
			}
			n := d.CorrectCount
			res.Updates = append(res.Updates, models.LedgerUpdate{QuestionID: sub.QuestionID, Action: models.ActionCorrect, CorrectCount: &n})
			continue
		}

		rec := l.RecordMiss(sub.QuestionID, q, now)
		l.ResetStreak(sub.QuestionID)
		graded.WrongCount = rec.WrongCount
		res.WrongQuestions = append(res.WrongQuestions, graded)
		n := rec.WrongCount
		res.Updates = append(res.Updates, models.LedgerUpdate{QuestionID: sub.QuestionID, Action: models.ActionWrong, WrongCount: &n})
	}

	return res
}

func resolve(id string, bank Resolver, l *wrongbook.Ledger, mode Mode) (models.Question, bool) {
	if mode == ModeRemedial {
		rec, ok := l.Get(id)
		if !ok {
			return models.Question{}, false
		}
		return rec.Question, true
	}
	q, err := bank.ByID(id)
	if err != nil {
		return models.Question{}, false
	}
	return q, true
}
