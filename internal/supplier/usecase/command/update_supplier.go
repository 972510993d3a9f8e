package command

import (
	"fmt"
	"time"

	"github.com/avend/stockroom/internal/permission"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/supplier/domain"
)

// UpdateSupplierCommand represents the command to update a supplier
type UpdateSupplierCommand struct {
	ActorLevel int
	SupplierID uint
	Name       string
	Address    string
}

// UpdateSupplierHandler handles supplier update command
type UpdateSupplierHandler struct {
	repo        domain.SupplierRepository
	permissions *permission.Config
}

// NewUpdateSupplierHandler creates a new update supplier handler
func NewUpdateSupplierHandler(repo domain.SupplierRepository, permissions *permission.Config) *UpdateSupplierHandler {
	return &UpdateSupplierHandler{repo: repo, permissions: permissions}
}

// Handle executes the update supplier command
func (h *UpdateSupplierHandler) Handle(cmd UpdateSupplierCommand) (*domain.Supplier, error) {
	if !h.permissions.Allowed(permdomain.ActionSupplierCreate, cmd.ActorLevel) {
		return nil, permdomain.ErrForbidden
	}

	supplier, err := h.repo.FindByID(cmd.SupplierID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != "" {
		supplier.Name = cmd.Name
	}
	if cmd.Address != "" {
		supplier.Address = cmd.Address
	}
	supplier.UpdatedAt = time.Now()

	if err := h.repo.Update(supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}
