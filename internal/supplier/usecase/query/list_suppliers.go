package query

import (
	"fmt"

	"github.com/avend/stockroom/internal/supplier/domain"
)

// ListSuppliersQuery represents the query to list suppliers with pagination
type ListSuppliersQuery struct {
	Limit  int
	Offset int
}

// ListSuppliersHandler handles list suppliers query
type ListSuppliersHandler struct {
	repo domain.SupplierRepository
}

// NewListSuppliersHandler creates a new list suppliers handler
func NewListSuppliersHandler(repo domain.SupplierRepository) *ListSuppliersHandler {
	return &ListSuppliersHandler{repo: repo}
}

// Handle executes the list suppliers query
func (h *ListSuppliersHandler) Handle(query ListSuppliersQuery) ([]domain.Supplier, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	suppliers, err := h.repo.FindAll(limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}
