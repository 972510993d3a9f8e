package query

import (
	"fmt"

	"github.com/avend/stockroom/internal/disposal/domain"
)

// ListDisposalsQuery represents the query to list disposals
type ListDisposalsQuery struct {
	Limit  int
	Offset int
}

// ListDisposalsHandler handles list disposals query
type ListDisposalsHandler struct {
	repo domain.DisposalRepository
}

// NewListDisposalsHandler creates a new list disposals handler
func NewListDisposalsHandler(repo domain.DisposalRepository) *ListDisposalsHandler {
	return &ListDisposalsHandler{repo: repo}
}

// Handle executes the list disposals query
func (h *ListDisposalsHandler) Handle(query ListDisposalsQuery) ([]domain.DisposedInventory, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	disposals, err := h.repo.FindAll(limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list disposals: %w", err)
	}
	return disposals, nil
}
