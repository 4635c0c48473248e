package models

import "time"

type User struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Username        string     `json:"username"`
	Password        string     `json:"-"`
	AccessStartsAt  *time.Time `json:"access_starts_at,omitempty"`
	AccessExpiresAt *time.Time `json:"access_expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AccessAllowed reports whether now falls inside the user's access window.
// A nil bound is open.
func (u User) AccessAllowed(now time.Time) bool {
	if u.AccessStartsAt != nil && now.Before(*u.AccessStartsAt) {
		return false
	}
	if u.AccessExpiresAt != nil && !now.Before(*u.AccessExpiresAt) {
		return false
	}
	return true
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
