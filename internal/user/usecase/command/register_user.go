package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/avend/stockroom/internal/user/domain"
	"github.com/avend/stockroom/pkg/auth"
)

// RegisterUserCommand represents the command to register a new user
type RegisterUserCommand struct {
	UserID    string
	FirstName string
	LastName  string
	Password  string
}

// RegisterUserHandler handles user registration command
type RegisterUserHandler struct {
	repo domain.UserRepository
}

// NewRegisterUserHandler creates a new register user handler
func NewRegisterUserHandler(repo domain.UserRepository) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

// Handle executes the register user command
func (h *RegisterUserHandler) Handle(cmd RegisterUserCommand) (*domain.User, error) {
	// Validation
	if cmd.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if cmd.FirstName == "" {
		return nil, fmt.Errorf("first name is required")
	}
	if cmd.LastName == "" {
		return nil, fmt.Errorf("last name is required")
	}
	if len(cmd.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	// Check if the user id is taken
	if _, err := h.repo.FindByID(cmd.UserID); err == nil {
		return nil, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		UserID:       cmd.UserID,
		FirstName:    cmd.FirstName,
		LastName:     cmd.LastName,
		AccountLevel: 0, // new accounts start untrusted
		Password:     hashedPassword,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.repo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}
