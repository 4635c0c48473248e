package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hamexam/backend/internal/apperr"
	"github.com/hamexam/backend/internal/models"
)

// AuthProvider resolves the caller of a request to a user ID. Failures carry
// an apperr kind (Unauthenticated or Forbidden).
type AuthProvider interface {
	Identify(r *http.Request) (int64, error)
}

// Auth rejects requests the provider cannot identify and stores the user ID
// in the request context for handlers.
func Auth(p AuthProvider) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := p.Identify(r)
			if err != nil {
				status := apperr.Status(err)
				if status == http.StatusInternalServerError {
					status = http.StatusUnauthorized
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(models.ErrorResponse{Error: authMessage(err, status)})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func authMessage(err error, status int) string {
	if apperr.KindOf(err) == apperr.Internal {
		return http.StatusText(status)
	}
	return apperr.Message(err)
}
