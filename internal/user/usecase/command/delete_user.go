package command

import (
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/user/domain"
)

// DeleteUserCommand represents the command to delete a user account
type DeleteUserCommand struct {
	ActorID  string
	TargetID string
}

// DeleteUserHandler handles user deletion command
type DeleteUserHandler struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
}

// NewDeleteUserHandler creates a new delete user handler
func NewDeleteUserHandler(users domain.UserRepository, sessions domain.SessionRepository) *DeleteUserHandler {
	return &DeleteUserHandler{users: users, sessions: sessions}
}

// Handle executes the delete user command. Only administrators may delete
// accounts, administrators cannot be deleted, and nobody deletes themselves.
func (h *DeleteUserHandler) Handle(cmd DeleteUserCommand) error {
	actor, err := h.users.FindByID(cmd.ActorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return permdomain.ErrForbidden
	}
	if cmd.ActorID == cmd.TargetID {
		return permdomain.ErrForbidden
	}

	target, err := h.users.FindByID(cmd.TargetID)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return permdomain.ErrForbidden
	}

	if err := h.sessions.DeleteByUserID(cmd.TargetID); err != nil {
		return err
	}
	return h.users.Delete(cmd.TargetID)
}
