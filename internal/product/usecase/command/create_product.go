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

// CreateProductCommand represents the command to create an inventory item
type CreateProductCommand struct {
	ActorLevel   int
	Description  string
	SupplierID   uint
	Stock        int
	RestockLimit int
	Image        string
}

// CreateProductHandler handles inventory item creation command
type CreateProductHandler struct {
	products    domain.ProductRepository
	suppliers   supplierdomain.SupplierRepository
	permissions *permission.Config
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(products domain.ProductRepository, suppliers supplierdomain.SupplierRepository, permissions *permission.Config) *CreateProductHandler {
	return &CreateProductHandler{products: products, suppliers: suppliers, permissions: permissions}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(cmd CreateProductCommand) (*domain.InventoryItem, error) {
	if !h.permissions.Allowed(permdomain.ActionProductCreate, cmd.ActorLevel) {
		return nil, permdomain.ErrForbidden
	}

	if cmd.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if cmd.Stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative")
	}
	if cmd.RestockLimit < 0 {
		return nil, fmt.Errorf("restock limit cannot be negative")
	}

	// The referenced supplier must exist before a product can point at it
	if _, err := h.suppliers.FindByID(cmd.SupplierID); err != nil {
		if errors.Is(err, supplierdomain.ErrNotFound) {
			return nil, domain.ErrUnknownSupplier
		}
		return nil, err
	}

	item := &domain.InventoryItem{
		Description:  cmd.Description,
		SupplierID:   cmd.SupplierID,
		Stock:        cmd.Stock,
		RestockLimit: cmd.RestockLimit,
		Image:        cmd.Image,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.products.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}
