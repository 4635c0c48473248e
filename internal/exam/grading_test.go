package exam

import (
	"testing"

	"github.com/hamexam/backend/internal/models"
	"github.com/hamexam/backend/internal/wrongbook"
)

func answers(pairs ...string) models.AnswerSet {
	var out models.AnswerSet
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.AnswerSubmission{QuestionID: pairs[i], RawAnswer: pairs[i+1]})
	}
	return out
}

func TestGradeFreshMissCreatesRecord(t *testing.T) {
	b := testBank(t, 3)
	l := wrongbook.NewLedger()

	res := Grade(answers("MC1-0001", "B", "MC1-0002", "a"), b, l, fixedNow, ModeFresh)

	if res.Total != 2 || res.CorrectCount != 1 || res.Score() != 50 {
		t.Errorf("total=%d correct=%d score=%d, want 2, 1, 50", res.Total, res.CorrectCount, res.Score())
	}
	r, ok := l.Get("MC1-0001")
	if !ok || r.WrongCount != 1 || r.CorrectCount != 0 {
		t.Errorf("record = %+v, %v; want wrong=1 correct=0", r, ok)
	}
	if _, ok := l.Get("MC1-0002"); ok {
		t.Error("correct answer on a fresh question created a record")
	}
	if len(res.WrongQuestions) != 1 || res.WrongQuestions[0].WrongCount != 1 {
		t.Errorf("wrong list = %+v", res.WrongQuestions)
	}
	if len(res.CorrectQuestions) != 1 || res.CorrectQuestions[0].QuestionID != "MC1-0002" {
		t.Errorf("correct list = %+v", res.CorrectQuestions)
	}
}

func TestGradeMissResetsStreak(t *testing.T) {
	b := testBank(t, 1)

	for _, mode := range []Mode{ModeFresh, ModeRemedial} {
		l := wrongbook.NewLedger()
		l.RecordMiss("MC1-0001", question("MC1-0001", "A"), fixedNow)
		l.RecordHit("MC1-0001")
		l.RecordHit("MC1-0001")

		Grade(answers("MC1-0001", "C"), b, l, fixedNow, mode)

		r, _ := l.Get("MC1-0001")
		if r.CorrectCount != 0 || r.WrongCount != 2 {
			t.Errorf("mode %d: record = wrong %d correct %d, want 2 and 0", mode, r.WrongCount, r.CorrectCount)
		}
	}
}

func TestGradeRemedialRetires(t *testing.T) {
	b := testBank(t, 1)
	l := wrongbook.NewLedger()
	l.RecordMiss("MC1-0001", question("MC1-0001", "A"), fixedNow)

	wantActions := []models.UpdateAction{models.ActionCorrect, models.ActionCorrect, models.ActionRemoved}
	for i, want := range wantActions {
		res := Grade(answers("MC1-0001", "A"), b, l, fixedNow, ModeRemedial)
		if len(res.Updates) != 1 || res.Updates[0].Action != want {
			t.Fatalf("round %d: updates = %+v, want action %s", i+1, res.Updates, want)
		}
		if want == models.ActionCorrect && *res.Updates[0].CorrectCount != i+1 {
			t.Errorf("round %d: correct_count = %d, want %d", i+1, *res.Updates[0].CorrectCount, i+1)
		}
	}
	if l.Len() != 0 {
		t.Errorf("ledger still has %d records", l.Len())
	}
}

func TestGradeRepeatedQuestionCountsOnce(t *testing.T) {
	b := testBank(t, 1)
	l := wrongbook.NewLedger()
	l.RecordMiss("MC1-0001", question("MC1-0001", "A"), fixedNow)

	res := Grade(answers("MC1-0001", "A", "MC1-0001", "A", "MC1-0001", "A"), b, l, fixedNow, ModeRemedial)

	if res.Total != 1 || res.CorrectCount != 1 || len(res.Updates) != 1 {
		t.Errorf("total=%d correct=%d updates=%d, want 1, 1, 1", res.Total, res.CorrectCount, len(res.Updates))
	}
	r, ok := l.Get("MC1-0001")
	if !ok || r.CorrectCount != 1 {
		t.Errorf("record = %+v, %v; want still present with correct_count 1", r, ok)
	}

	// The last answer for a repeated question is the one graded.
	res = Grade(answers("MC1-0001", "A", "MC1-0001", "C"), b, l, fixedNow, ModeRemedial)
	if res.CorrectCount != 0 || len(res.WrongQuestions) != 1 {
		t.Errorf("correct=%d wrong=%d, want 0 and 1", res.CorrectCount, len(res.WrongQuestions))
	}
}

func TestGradeRemedialUsesSnapshot(t *testing.T) {
	// The bank now says B, but the snapshot taken at miss time says A.
	bank := testBank(t, 0)
	l := wrongbook.NewLedger()
	l.RecordMiss("MC1-0001", question("MC1-0001", "A"), fixedNow)

	res := Grade(answers("MC1-0001", "A"), bank, l, fixedNow, ModeRemedial)
	if res.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1 (graded against snapshot)", res.CorrectCount)
	}
}

func TestGradeSkipsUnresolved(t *testing.T) {
	b := testBank(t, 1)
	l := wrongbook.NewLedger()

	res := Grade(answers("nope", "A", "MC1-0001", "A"), b, l, fixedNow, ModeFresh)
	if res.Total != 2 || res.Skipped != 1 || len(res.Results) != 1 {
		t.Errorf("total=%d skipped=%d results=%d, want 2, 1, 1", res.Total, res.Skipped, len(res.Results))
	}
	if res.Score() != 50 {
		t.Errorf("Score() = %d, want 50", res.Score())
	}

	// Remedial grading never consults the bank.
	res = Grade(answers("MC1-0001", "A"), b, l, fixedNow, ModeRemedial)
	if res.Skipped != 1 {
		t.Errorf("remedial skipped = %d, want 1", res.Skipped)
	}
}

func TestGradeEmptySubmission(t *testing.T) {
	res := Grade(nil, testBank(t, 1), wrongbook.NewLedger(), fixedNow, ModeFresh)
	if res.Total != 0 || res.Score() != 0 {
		t.Errorf("total=%d score=%d, want 0 and 0", res.Total, res.Score())
	}
	if res.Results == nil || res.WrongQuestions == nil || res.CorrectQuestions == nil {
		t.Error("empty result lists should be non-nil")
	}
}

func TestScoreFloors(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{2, 3, 66},
		{1, 3, 33},
		{3, 3, 100},
		{0, 5, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		g := GradeResult{CorrectCount: tt.correct, Total: tt.total}
		if got := g.Score(); got != tt.want {
			t.Errorf("Score(%d/%d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}
