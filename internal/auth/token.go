package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hamexam/backend/internal/apperr"
)

// Tokens issues and verifies HS256 session tokens carrying a user_id claim.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(userID int64) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(t.ttl).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies the signature and expiry and returns the user ID.
func (t *Tokens) Parse(raw string) (int64, error) {
	token, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return 0, apperr.Wrap(apperr.Unauthenticated, "Invalid or expired token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, apperr.E(apperr.Unauthenticated, "Invalid token claims")
	}
	// JSON numbers decode as float64.
	uid, ok := claims["user_id"].(float64)
	if !ok || uid <= 0 {
		return 0, apperr.E(apperr.Unauthenticated, "Invalid token claims")
	}
	return int64(uid), nil
}
