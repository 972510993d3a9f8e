package query

import (
	"github.com/avend/stockroom/internal/disposal/domain"
)

// GetDisposalQuery represents the query to get a disposal by id
type GetDisposalQuery struct {
	DisposalID uint
}

// GetDisposalHandler handles get disposal query
type GetDisposalHandler struct {
	repo domain.DisposalRepository
}

// NewGetDisposalHandler creates a new get disposal handler
func NewGetDisposalHandler(repo domain.DisposalRepository) *GetDisposalHandler {
	return &GetDisposalHandler{repo: repo}
}

// Handle executes the get disposal query
func (h *GetDisposalHandler) Handle(query GetDisposalQuery) (*domain.DisposedInventory, error) {
	return h.repo.FindByID(query.DisposalID)
}
