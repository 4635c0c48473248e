package exam

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hamexam/backend/internal/apperr"
	"github.com/hamexam/backend/internal/middleware"
	"github.com/hamexam/backend/internal/models"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.SugaredLogger
}

func NewHandler(service *Service, log *zap.SugaredLogger) *Handler {
	return &Handler{service: service, log: log}
}

// ── Exams ───────────────────────────────────────────────

func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	e := h.service.RandomExam()
	writeJSON(w, http.StatusOK, models.ExamResponse{ExamID: e.ID, Questions: e.Questions})
}

func (h *Handler) GetCustomExam(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	startID, err := intQueryParam(query, "start_id", 1)
	if err != nil {
		h.writeError(w, err)
		return
	}
	count, err := intQueryParam(query, "count", DefaultExamSize)
	if err != nil {
		h.writeError(w, err)
		return
	}

	e, err := h.service.CustomExam(startID, count)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.CustomExamResponse{
		ExamID:      e.ID,
		Questions:   e.Questions,
		StartID:     startID,
		ActualCount: len(e.Questions),
	})
}

func (h *Handler) SubmitExam(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	req, ok := decodeSubmit(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Submit(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Remedial practice ───────────────────────────────────

func (h *Handler) GetPracticeExam(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	e, err := h.service.PracticeExam(r.Context(), userID)
	if apperr.Is(err, apperr.EmptySet) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: apperr.Message(err)})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.PracticeExamResponse{
		ExamID:    e.ID,
		Questions: e.Questions,
		Type:      "practice",
	})
}

func (h *Handler) SubmitPracticeExam(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	req, ok := decodeSubmit(w, r)
	if !ok {
		return
	}

	resp, err := h.service.SubmitPractice(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Helpers ─────────────────────────────────────────────

// decodeSubmit treats an empty body as an empty submission.
func decodeSubmit(w http.ResponseWriter, r *http.Request) (models.SubmitExamRequest, bool) {
	var req models.SubmitExamRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return req, false
	}
	return req, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorw("exam request failed", "error", err)
	}
	writeJSON(w, status, models.ErrorResponse{Error: apperr.Message(err)})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(query.Get(key))
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.E(apperr.InvalidArgument, "%s must be an integer", key)
	}
	return v, nil
}
