package query

import (
	"fmt"

	"github.com/avend/stockroom/internal/transaction/domain"
)

// ListTransactionsQuery represents the query to list transactions
type ListTransactionsQuery struct {
	Limit  int
	Offset int
}

// ListTransactionsHandler handles list transactions query
type ListTransactionsHandler struct {
	repo domain.TransactionRepository
}

// NewListTransactionsHandler creates a new list transactions handler
func NewListTransactionsHandler(repo domain.TransactionRepository) *ListTransactionsHandler {
	return &ListTransactionsHandler{repo: repo}
}

// Handle executes the list transactions query
func (h *ListTransactionsHandler) Handle(query ListTransactionsQuery) ([]domain.Transaction, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	transactions, err := h.repo.FindAll(limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
