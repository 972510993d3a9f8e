package command

import (
	"errors"
	"fmt"

	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/user/domain"
)

// UpdateAccountLevelsCommand represents the bulk account-level update posted
// from the user administration form
type UpdateAccountLevelsCommand struct {
	ActorLevel int
	Levels     map[string]int // user id -> new account level
}

// UpdateAccountLevelsHandler handles bulk account level changes
type UpdateAccountLevelsHandler struct {
	repo domain.UserRepository
}

// NewUpdateAccountLevelsHandler creates a new update account levels handler
func NewUpdateAccountLevelsHandler(repo domain.UserRepository) *UpdateAccountLevelsHandler {
	return &UpdateAccountLevelsHandler{repo: repo}
}

// Handle executes the update account levels command. Unknown user ids are
// skipped rather than failing the whole batch.
func (h *UpdateAccountLevelsHandler) Handle(cmd UpdateAccountLevelsCommand) error {
	if cmd.ActorLevel < domain.AdminLevel {
		return permdomain.ErrForbidden
	}

	for userID, level := range cmd.Levels {
		if level < 0 {
			return fmt.Errorf("account level for %s cannot be negative", userID)
		}
		if err := h.repo.UpdateAccountLevel(userID, level); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
	}
	return nil
}
