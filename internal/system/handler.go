package system

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hamexam/backend/internal/apperr"
	"github.com/hamexam/backend/internal/middleware"
	"github.com/hamexam/backend/internal/models"
	"github.com/hamexam/backend/internal/questions"
	"github.com/hamexam/backend/internal/wrongbook"
	"go.uber.org/zap"
)

type Handler struct {
	bank    *questions.Bank
	ledgers *wrongbook.Service
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewHandler(bank *questions.Bank, ledgers *wrongbook.Service, log *zap.SugaredLogger) *Handler {
	return &Handler{bank: bank, ledgers: ledgers, log: log, now: time.Now}
}

// Status reports bank size and the caller's ledger size. last_updated is the
// caller's most recent miss, or the current time when the ledger is empty.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	l, err := h.ledgers.View(r.Context(), userID)
	if err != nil {
		h.log.Errorw("system status", "user_id", userID, "error", err)
		writeJSON(w, apperr.Status(err), models.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	last := l.LastUpdated()
	if last.IsZero() {
		last = h.now()
	}
	writeJSON(w, http.StatusOK, models.SystemStatusResponse{
		TotalQuestions:      h.bank.Len(),
		WrongQuestionsCount: l.Len(),
		LastUpdated:         last,
	})
}

// Reset clears the caller's ledger only.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.ledgers.Clear(r.Context(), userID); err != nil {
		h.log.Errorw("system reset", "user_id", userID, "error", err)
		writeJSON(w, apperr.Status(err), models.ErrorResponse{Error: apperr.Message(err)})
		return
	}

	h.log.Infow("ledger reset", "user_id", userID)
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Message: "Wrong-question book cleared"})
}

// Health is the unauthenticated liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
