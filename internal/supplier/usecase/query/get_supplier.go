package query

import (
	"github.com/avend/stockroom/internal/supplier/domain"
)

// GetSupplierQuery represents the query to get a supplier by id
type GetSupplierQuery struct {
	SupplierID uint
}

// GetSupplierHandler handles get supplier query
type GetSupplierHandler struct {
	repo domain.SupplierRepository
}

// NewGetSupplierHandler creates a new get supplier handler
func NewGetSupplierHandler(repo domain.SupplierRepository) *GetSupplierHandler {
	return &GetSupplierHandler{repo: repo}
}

// Handle executes the get supplier query
func (h *GetSupplierHandler) Handle(query GetSupplierQuery) (*domain.Supplier, error) {
	return h.repo.FindByID(query.SupplierID)
}
