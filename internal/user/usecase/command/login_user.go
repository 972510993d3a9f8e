package command

import (
	"fmt"
	"time"

	"github.com/avend/stockroom/internal/user/domain"
	"github.com/avend/stockroom/pkg/auth"
)

// LoginUserCommand represents the command to login a user
type LoginUserCommand struct {
	UserID   string
	Password string
}

// LoginResponse represents the response after successful login
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// LoginUserHandler handles user login command
type LoginUserHandler struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	sessionTTL time.Duration
}

// NewLoginUserHandler creates a new login user handler
func NewLoginUserHandler(users domain.UserRepository, sessions domain.SessionRepository, sessionTTL time.Duration) *LoginUserHandler {
	return &LoginUserHandler{users: users, sessions: sessions, sessionTTL: sessionTTL}
}

// Handle executes the login user command
func (h *LoginUserHandler) Handle(cmd LoginUserCommand) (*LoginResponse, error) {
	if cmd.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if cmd.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	user, err := h.users.FindByID(cmd.UserID)
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.Password, cmd.Password) {
		return nil, domain.ErrUnauthorized
	}

	// Re-login invalidates any earlier session for this user
	if err := h.sessions.DeleteByUserID(user.UserID); err != nil {
		return nil, err
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		Token:     token,
		UserID:    user.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(h.sessionTTL),
	}
	if err := h.sessions.Create(session); err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}
