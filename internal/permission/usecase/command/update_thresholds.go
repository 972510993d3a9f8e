package command

import (
	"fmt"

	"github.com/avend/stockroom/internal/permission"
	"github.com/avend/stockroom/internal/permission/domain"
	userdomain "github.com/avend/stockroom/internal/user/domain"
)

// UpdateThresholdsCommand represents the command to change action thresholds
type UpdateThresholdsCommand struct {
	ActorLevel int
	Thresholds map[string]int
}

// UpdateThresholdsHandler handles the threshold update command
type UpdateThresholdsHandler struct {
	repo   domain.PermissionRepository
	config *permission.Config
}

// NewUpdateThresholdsHandler creates a new update thresholds handler
func NewUpdateThresholdsHandler(repo domain.PermissionRepository, config *permission.Config) *UpdateThresholdsHandler {
	return &UpdateThresholdsHandler{repo: repo, config: config}
}

// Handle executes the update thresholds command
func (h *UpdateThresholdsHandler) Handle(cmd UpdateThresholdsCommand) error {
	if cmd.ActorLevel < userdomain.AdminLevel {
		return domain.ErrForbidden
	}

	for action, level := range cmd.Thresholds {
		if level < 0 {
			return fmt.Errorf("threshold for %s cannot be negative", action)
		}
	}

	set, err := h.repo.Load()
	if err != nil {
		return fmt.Errorf("failed to load permissions: %w", err)
	}

	// Only recognized action names are overwritten; unknown keys are ignored
	set.Apply(cmd.Thresholds)

	if err := h.repo.Save(set); err != nil {
		return fmt.Errorf("failed to save permissions: %w", err)
	}

	h.config.Reload(set)
	return nil
}
