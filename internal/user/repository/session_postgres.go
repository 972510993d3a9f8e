package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/avend/stockroom/internal/user/domain"
)

// PostgresSessionRepository implements SessionRepository over database/sql.
// Sessions are written outside the GORM unit of work on purpose: they are
// keyed lookups on the request hot path with no relation traversal.
type PostgresSessionRepository struct {
	db *sql.DB
}

// NewPostgresSessionRepository creates a new SQL session repository
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// Migrate creates the sessions table if it does not exist
func (r *PostgresSessionRepository) Migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token      TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users (user_id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			expires_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to migrate sessions table: %w", err)
	}
	return nil
}

// Create inserts a new session row
func (r *PostgresSessionRepository) Create(session *domain.Session) error {
	_, err := r.db.Exec(
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		session.Token, session.UserID, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByToken retrieves a session by its token
func (r *PostgresSessionRepository) FindByToken(token string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.QueryRow(
		`SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = $1`,
		token,
	).Scan(&session.Token, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

// DeleteByToken removes the session with the given token. Deleting an absent
// token is not an error; logout is idempotent.
func (r *PostgresSessionRepository) DeleteByToken(token string) error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID removes all sessions belonging to a user
func (r *PostgresSessionRepository) DeleteByUserID(userID string) error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}
