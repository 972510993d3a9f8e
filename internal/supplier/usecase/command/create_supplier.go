package command

import (
	"fmt"
	"time"

	"github.com/avend/stockroom/internal/permission"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/supplier/domain"
)

// CreateSupplierCommand represents the command to create a supplier
type CreateSupplierCommand struct {
	ActorLevel int
	Name       string
	Address    string
}

// CreateSupplierHandler handles supplier creation command
type CreateSupplierHandler struct {
	repo        domain.SupplierRepository
	permissions *permission.Config
}

// NewCreateSupplierHandler creates a new create supplier handler
func NewCreateSupplierHandler(repo domain.SupplierRepository, permissions *permission.Config) *CreateSupplierHandler {
	return &CreateSupplierHandler{repo: repo, permissions: permissions}
}

// Handle executes the create supplier command
func (h *CreateSupplierHandler) Handle(cmd CreateSupplierCommand) (*domain.Supplier, error) {
	if !h.permissions.Allowed(permdomain.ActionSupplierCreate, cmd.ActorLevel) {
		return nil, permdomain.ErrForbidden
	}

	if cmd.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if cmd.Address == "" {
		return nil, fmt.Errorf("address is required")
	}

	supplier := &domain.Supplier{
		Name:      cmd.Name,
		Address:   cmd.Address,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.repo.Create(supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}
