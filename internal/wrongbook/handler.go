package wrongbook

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hamexam/backend/internal/apperr"
	"github.com/hamexam/backend/internal/middleware"
	"github.com/hamexam/backend/internal/models"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewHandler(service *Service, log *zap.SugaredLogger) *Handler {
	return &Handler{service: service, log: log, now: time.Now}
}

func (h *Handler) ListWrongQuestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	l, err := h.service.View(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Entries())
}

func (h *Handler) Practice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.PracticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	removed, err := h.service.Practice(r.Context(), userID, req.QuestionID, req.IsCorrect, h.now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	msg := "Wrong-question book updated"
	if removed {
		msg = "Question removed from the wrong-question book"
	}
	writeJSON(w, http.StatusOK, models.PracticeResponse{Success: true, Removed: removed, Message: msg})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorw("wrongbook request failed", "error", err)
	}
	writeJSON(w, status, models.ErrorResponse{Error: apperr.Message(err)})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
