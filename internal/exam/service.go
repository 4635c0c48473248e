package exam

import (
	"context"
	"time"

	"github.com/hamexam/backend/internal/models"
	"github.com/hamexam/backend/internal/questions"
	"github.com/hamexam/backend/internal/wrongbook"
	"go.uber.org/zap"
)

type Service struct {
	bank         *questions.Bank
	ledgers      *wrongbook.Service
	assembler    *Assembler
	log          *zap.SugaredLogger
	examSize     int
	remedialSize int
	now          func() time.Time
}

type Options struct {
	ExamSize     int
	RemedialSize int
}

func NewService(bank *questions.Bank, ledgers *wrongbook.Service, log *zap.SugaredLogger, opts Options) *Service {
	if opts.ExamSize < 1 {
		opts.ExamSize = DefaultExamSize
	}
	if opts.RemedialSize < 1 {
		opts.RemedialSize = DefaultRemedialSize
	}
	return &Service{
		bank:         bank,
		ledgers:      ledgers,
		assembler:    NewAssembler(),
		log:          log,
		examSize:     opts.ExamSize,
		remedialSize: opts.RemedialSize,
		now:          time.Now,
	}
}

func (s *Service) RandomExam() models.Exam {
	return s.assembler.RandomExam(s.bank, s.examSize)
}

func (s *Service) CustomExam(startID, count int) (models.Exam, error) {
	return s.assembler.RangedExam(s.bank, startID, count)
}

func (s *Service) PracticeExam(ctx context.Context, userID int64) (models.Exam, error) {
	l, err := s.ledgers.View(ctx, userID)
	if err != nil {
		return models.Exam{}, err
	}
	return s.assembler.RemedialExam(l, s.remedialSize)
}

// Submit grades a fresh exam and records misses in the user's ledger.
func (s *Service) Submit(ctx context.Context, userID int64, req models.SubmitExamRequest) (*models.SubmitExamResponse, error) {
	res, err := s.grade(ctx, userID, req, ModeFresh)
	if err != nil {
		return nil, err
	}
	resp := submitResponse(req.ExamID, res)
	return &resp, nil
}

// SubmitPractice grades a remedial exam against the ledger snapshots.
func (s *Service) SubmitPractice(ctx context.Context, userID int64, req models.SubmitExamRequest) (*models.SubmitPracticeResponse, error) {
	res, err := s.grade(ctx, userID, req, ModeRemedial)
	if err != nil {
		return nil, err
	}
	return &models.SubmitPracticeResponse{
		SubmitExamResponse: submitResponse(req.ExamID, res),
		UpdatedQuestions:   res.Updates,
	}, nil
}

func (s *Service) grade(ctx context.Context, userID int64, req models.SubmitExamRequest, mode Mode) (GradeResult, error) {
	var res GradeResult
	now := s.now()
	err := s.ledgers.Update(ctx, userID, func(l *wrongbook.Ledger) error {
		res = Grade(req.Answers, s.bank, l, now, mode)
		return nil
	})
	if err != nil {
		return GradeResult{}, err
	}

	if res.Skipped > 0 {
		s.log.Warnw("skipped unresolvable answers",
			"user_id", userID,
			"exam_id", req.ExamID,
			"remedial", mode == ModeRemedial,
			"skipped", res.Skipped,
		)
	}
	return res, nil
}

func submitResponse(examID string, res GradeResult) models.SubmitExamResponse {
	return models.SubmitExamResponse{
		ExamID:           examID,
		Total:            res.Total,
		CorrectCount:     res.CorrectCount,
		Score:            res.Score(),
		SkippedCount:     res.Skipped,
		WrongQuestions:   res.WrongQuestions,
		CorrectQuestions: res.CorrectQuestions,
		Results:          res.Results,
	}
}
