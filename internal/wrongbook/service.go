package wrongbook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hamexam/backend/internal/apperr"
	"go.uber.org/zap"
)

type Service struct {
	store Store
	locks *Locker
	log   *zap.SugaredLogger
}

func NewService(store Store, log *zap.SugaredLogger) *Service {
	return &Service{store: store, locks: NewLocker(), log: log}
}

// Update runs fn against the user's ledger while holding that user's lock:
// load, fn, save. When fn fails nothing is written.
func (s *Service) Update(ctx context.Context, userID int64, fn func(*Ledger) error) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	l, err := s.store.Load(ctx, userID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "load ledger", err)
	}
	if err := fn(l); err != nil {
		return err
	}
	if err := s.store.Save(ctx, userID, l); err != nil {
		s.log.Errorw("ledger save failed", "user_id", userID, "error", err)
		return apperr.Wrap(apperr.Internal, "save ledger", err)
	}
	return nil
}

// View returns a consistent copy of the user's ledger.
func (s *Service) View(ctx context.Context, userID int64) (*Ledger, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	l, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "load ledger", err)
	}
	return l, nil
}

// Practice applies a single self-reported answer to one ledger record.
// A miss bumps the wrong count and clears the streak; a hit may retire it.
func (s *Service) Practice(ctx context.Context, userID int64, questionID string, isCorrect bool, now time.Time) (removed bool, err error) {
	questionID = strings.TrimSpace(questionID)
	if questionID == "" {
		return false, apperr.E(apperr.InvalidArgument, "question_id is required")
	}

	err = s.Update(ctx, userID, func(l *Ledger) error {
		rec, ok := l.Get(questionID)
		if !ok {
			return apperr.E(apperr.NotFound, "question %s is not in the wrong-question book", questionID)
		}
		if isCorrect {
			removed = l.RecordHit(questionID).Retired
			return nil
		}
		l.RecordMiss(questionID, rec.Question, now)
		l.ResetStreak(questionID)
		return nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		s.log.Infow("question retired from ledger", "user_id", userID, "question_id", questionID)
	}
	return removed, nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	err := s.Update(ctx, userID, func(l *Ledger) error {
		l.Clear()
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	return nil
}
