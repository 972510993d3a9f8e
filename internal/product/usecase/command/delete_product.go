package command

import (
	"github.com/avend/stockroom/internal/permission"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/product/domain"
)

// DeleteProductCommand represents the command to delete an inventory item
type DeleteProductCommand struct {
	ActorLevel int
	ProductID  uint
}

// DeleteProductHandler handles inventory item deletion command
type DeleteProductHandler struct {
	products    domain.ProductRepository
	permissions *permission.Config
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(products domain.ProductRepository, permissions *permission.Config) *DeleteProductHandler {
	return &DeleteProductHandler{products: products, permissions: permissions}
}

// Handle executes the delete product command
func (h *DeleteProductHandler) Handle(cmd DeleteProductCommand) error {
	if !h.permissions.Allowed(permdomain.ActionProductCreate, cmd.ActorLevel) {
		return permdomain.ErrForbidden
	}
	return h.products.Delete(cmd.ProductID)
}
