package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/hamexam/backend/internal/apperr"
)

// Provider identifies requests from their bearer token and enforces the
// account's access window.
type Provider struct {
	tokens *Tokens
	users  Users
	now    func() time.Time
}

func NewProvider(tokens *Tokens, users Users) *Provider {
	return &Provider{tokens: tokens, users: users, now: time.Now}
}

func (p *Provider) Identify(r *http.Request) (int64, error) {
	raw := bearerToken(r)
	if raw == "" {
		return 0, apperr.E(apperr.Unauthenticated, "Authentication required")
	}

	userID, err := p.tokens.Parse(raw)
	if err != nil {
		return 0, err
	}

	u, err := p.users.ByID(r.Context(), userID)
	if apperr.Is(err, apperr.NotFound) {
		return 0, apperr.E(apperr.Unauthenticated, "Account no longer exists")
	}
	if err != nil {
		return 0, err
	}
	if !u.AccessAllowed(p.now()) {
		return 0, apperr.E(apperr.Forbidden, "Account access is not active")
	}
	return userID, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
