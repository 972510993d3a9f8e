package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound signals that the requested user does not exist
	ErrNotFound = errors.New("user not found")
	// ErrConflict signals a registration attempt for an existing user id
	ErrConflict = errors.New("user already exists")
	// ErrUnauthorized signals missing or invalid credentials
	ErrUnauthorized = errors.New("invalid credentials")
)

// User represents an account in the system. AccountLevel is the integer trust
// tier compared against per-action permission thresholds.
type User struct {
	UserID       string    `json:"user_id" gorm:"primaryKey;size:64"`
	FirstName    string    `json:"first_name" gorm:"not null"`
	LastName     string    `json:"last_name" gorm:"not null"`
	AccountLevel int       `json:"account_level" gorm:"not null;default:0"`
	Password     string    `json:"-" gorm:"not null"` // bcrypt hash, never exposed
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin checks if the user has administrator privileges
func (u *User) IsAdmin() bool {
	return u.AccountLevel >= AdminLevel
}

// AdminLevel is the account level at which a user is treated as an administrator
const AdminLevel = 10

// Session maps an opaque cookie token to a user id. One active session exists
// per user; login replaces any prior rows.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(user *User) error
	FindByID(userID string) (*User, error)
	FindAll(limit, offset int) ([]User, error)
	UpdateAccountLevel(userID string, level int) error
	Delete(userID string) error
	Count() (int64, error)
}

// SessionRepository defines the contract for session data access
type SessionRepository interface {
	Create(session *Session) error
	FindByToken(token string) (*Session, error)
	DeleteByToken(token string) error
	DeleteByUserID(userID string) error
}
