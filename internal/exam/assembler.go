package exam

import (
	"math/rand/v2"
	"time"

	"github.com/hamexam/backend/internal/apperr"
	"github.com/hamexam/backend/internal/models"
	"github.com/hamexam/backend/internal/questions"
	"github.com/hamexam/backend/internal/wrongbook"
)

const (
	DefaultExamSize     = 20
	DefaultRemedialSize = 20
	MaxRangedCount      = 1000

	examIDLayout = "20060102150405"
	customPrefix = "custom_exam_"
)

// Assembler builds exams. intn is swappable so tests can pin the sample.
type Assembler struct {
	intn func(n int) int
	now  func() time.Time
}

func NewAssembler() *Assembler {
	return &Assembler{intn: rand.IntN, now: time.Now}
}

// RandomExam returns every question when the bank has at most size of them,
// otherwise a uniform sample of size distinct questions.
func (a *Assembler) RandomExam(bank *questions.Bank, size int) models.Exam {
	qs := bank.All()
	if len(qs) > size {
		// Partial Fisher-Yates: the first size slots end up a uniform sample.
		for i := 0; i < size; i++ {
			j := i + a.intn(len(qs)-i)
			qs[i], qs[j] = qs[j], qs[i]
		}
		qs = qs[:size]
	}
	return models.Exam{ID: a.examID(models.ExamRandom), Kind: models.ExamRandom, Questions: qs}
}

// RangedExam slices the bank by 1-based position. The result is clipped to
// what the bank holds and may be empty when startID is past the end.
func (a *Assembler) RangedExam(bank *questions.Bank, startID, count int) (models.Exam, error) {
	if bank.Len() == 0 {
		return models.Exam{}, apperr.E(apperr.EmptySet, "question bank is empty")
	}
	if startID < 1 {
		return models.Exam{}, apperr.E(apperr.InvalidArgument, "start_id must be at least 1")
	}
	if count < 1 || count > MaxRangedCount {
		return models.Exam{}, apperr.E(apperr.InvalidArgument, "count must be between 1 and %d", MaxRangedCount)
	}

	from := startID - 1
	qs := bank.Slice(from, from+count)
	return models.Exam{ID: a.examID(models.ExamRanged), Kind: models.ExamRanged, Questions: qs}, nil
}

// RemedialExam takes up to maxSize snapshots from the ledger in ledger order.
func (a *Assembler) RemedialExam(l *wrongbook.Ledger, maxSize int) (models.Exam, error) {
	if l.Len() == 0 {
		return models.Exam{}, apperr.E(apperr.EmptySet, "no wrong questions to practice")
	}

	records := l.All()
	if len(records) > maxSize {
		records = records[:maxSize]
	}
	qs := make([]models.Question, 0, len(records))
	for _, r := range records {
		qs = append(qs, r.Question)
	}
	return models.Exam{ID: a.examID(models.ExamRemedial), Kind: models.ExamRemedial, Questions: qs}, nil
}

func (a *Assembler) examID(kind models.ExamKind) string {
	id := a.now().Format(examIDLayout)
	if kind == models.ExamRanged {
		return customPrefix + id
	}
	return id
}
