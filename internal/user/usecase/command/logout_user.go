package command

import (
	"github.com/avend/stockroom/internal/user/domain"
)

// LogoutUserCommand represents the command to end a session
type LogoutUserCommand struct {
	Token string
}

// LogoutUserHandler handles user logout command
type LogoutUserHandler struct {
	sessions domain.SessionRepository
}

// NewLogoutUserHandler creates a new logout user handler
func NewLogoutUserHandler(sessions domain.SessionRepository) *LogoutUserHandler {
	return &LogoutUserHandler{sessions: sessions}
}

// Handle executes the logout command. A missing or unknown token is not an
// error; repeated logout is idempotent.
func (h *LogoutUserHandler) Handle(cmd LogoutUserCommand) error {
	if cmd.Token == "" {
		return nil
	}
	return h.sessions.DeleteByToken(cmd.Token)
}
