package questions

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hamexam/backend/internal/apperr"
	"github.com/hamexam/backend/internal/models"
)

type Handler struct {
	bank *Bank
}

func NewHandler(bank *Bank) *Handler {
	return &Handler{bank: bank}
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	qs := h.bank.All()
	writeJSON(w, http.StatusOK, models.QuestionListResponse{Questions: qs, Total: len(qs)})
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.bank.ByID(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, apperr.Status(err), models.ErrorResponse{Error: apperr.Message(err)})
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
