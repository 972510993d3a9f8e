package query

import (
	"github.com/avend/stockroom/internal/transaction/domain"
)

// GetTransactionQuery represents the query to get a transaction by id
type GetTransactionQuery struct {
	TransactionID uint
}

// GetTransactionHandler handles get transaction query
type GetTransactionHandler struct {
	repo domain.TransactionRepository
}

// NewGetTransactionHandler creates a new get transaction handler
func NewGetTransactionHandler(repo domain.TransactionRepository) *GetTransactionHandler {
	return &GetTransactionHandler{repo: repo}
}

// Handle executes the get transaction query
func (h *GetTransactionHandler) Handle(query GetTransactionQuery) (*domain.Transaction, error) {
	return h.repo.FindByID(query.TransactionID)
}
