package query

import (
	"fmt"

	"github.com/avend/stockroom/internal/product/domain"
)

// ListLowStockQuery represents the query for items under their restock limit
type ListLowStockQuery struct {
	Limit  int
	Offset int
}

// ListLowStockHandler handles the low stock query
type ListLowStockHandler struct {
	repo domain.ProductRepository
}

// NewListLowStockHandler creates a new list low stock handler
func NewListLowStockHandler(repo domain.ProductRepository) *ListLowStockHandler {
	return &ListLowStockHandler{repo: repo}
}

// Handle executes the low stock query
func (h *ListLowStockHandler) Handle(query ListLowStockQuery) ([]domain.InventoryItem, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	items, err := h.repo.FindLowStock(limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return items, nil
}
