package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hamexam/backend/internal/apperr"
	"github.com/hamexam/backend/internal/models"
	"github.com/lib/pq"
)

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// Users is the account storage the auth code depends on.
type Users interface {
	Create(ctx context.Context, email, name, passwordHash string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id int64) (*models.User, error)
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const userColumns = `id, email, name, COALESCE(username, ''), password,
	access_starts_at, access_expires_at, created_at, updated_at`

// Create inserts the user, regenerating the username on collisions.
func (s *Store) Create(ctx context.Context, email, name, passwordHash string) (*models.User, error) {
	username := GenerateUsername(name)
	now := time.Now()

	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		row := s.db.QueryRowContext(ctx,
			`INSERT INTO users (email, name, username, password, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+userColumns,
			email, name, username, passwordHash, now, now,
		)
		u, err := scanUser(row)
		if err == nil {
			return u, nil
		}
		lastErr = err

		var pqErr *pq.Error
		if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
			break
		}
		if pqErr.Constraint == "users_username_key" {
			username = GenerateUsername(name)
			continue
		}
		return nil, ErrEmailTaken
	}
	return nil, fmt.Errorf("create user: %w", lastErr)
}

func (s *Store) ByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *Store) ByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var starts, expires sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Username, &u.Password,
		&starts, &expires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if starts.Valid {
		u.AccessStartsAt = &starts.Time
	}
	if expires.Valid {
		u.AccessExpiresAt = &expires.Time
	}
	return &u, nil
}
