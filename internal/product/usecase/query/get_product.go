package query

import (
	"github.com/avend/stockroom/internal/product/domain"
)

// GetProductQuery represents the query to get an inventory item by id
type GetProductQuery struct {
	ProductID uint
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	repo domain.ProductRepository
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(query GetProductQuery) (*domain.InventoryItem, error) {
	return h.repo.FindByID(query.ProductID)
}
