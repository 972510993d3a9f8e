package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/avend/stockroom/internal/permission"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/product/domain"
	supplierdomain "github.com/avend/stockroom/internal/supplier/domain"
)

// UpdateProductCommand represents the command to update an inventory item's
// descriptive fields. Stock is deliberately absent; it moves only through the
// delivery, transaction, and disposal workflows.
type UpdateProductCommand struct {
	ActorLevel   int
	ProductID    uint
	Description  string
	SupplierID   uint
	RestockLimit *int
	Image        string
}

// UpdateProductHandler handles inventory item update command
type UpdateProductHandler struct {
	products    domain.ProductRepository
	suppliers   supplierdomain.SupplierRepository
	permissions *permission.Config
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(products domain.ProductRepository, suppliers supplierdomain.SupplierRepository, permissions *permission.Config) *UpdateProductHandler {
	return &UpdateProductHandler{products: products, suppliers: suppliers, permissions: permissions}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(cmd UpdateProductCommand) (*domain.InventoryItem, error) {
	if !h.permissions.Allowed(permdomain.ActionProductCreate, cmd.ActorLevel) {
		return nil, permdomain.ErrForbidden
	}

	item, err := h.products.FindByID(cmd.ProductID)
	if err != nil {
		return nil, err
	}

	if cmd.Description != "" {
		item.Description = cmd.Description
	}
	if cmd.SupplierID != 0 && cmd.SupplierID != item.SupplierID {
		if _, err := h.suppliers.FindByID(cmd.SupplierID); err != nil {
			if errors.Is(err, supplierdomain.ErrNotFound) {
				return nil, domain.ErrUnknownSupplier
			}
			return nil, err
		}
		item.SupplierID = cmd.SupplierID
	}
	if cmd.RestockLimit != nil {
		if *cmd.RestockLimit < 0 {
			return nil, fmt.Errorf("restock limit cannot be negative")
		}
		item.RestockLimit = *cmd.RestockLimit
	}
	if cmd.Image != "" {
		item.Image = cmd.Image
	}
	item.UpdatedAt = time.Now()

	if err := h.products.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}
