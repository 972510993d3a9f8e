package query

import (
	"fmt"

	"github.com/avend/stockroom/internal/product/domain"
)

// ListProductsQuery represents the query to list inventory items
type ListProductsQuery struct {
	Limit  int
	Offset int
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle executes the list products query
func (h *ListProductsHandler) Handle(query ListProductsQuery) ([]domain.InventoryItem, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	items, err := h.repo.FindAll(limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return items, nil
}
