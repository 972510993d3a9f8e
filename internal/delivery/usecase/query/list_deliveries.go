package query

import (
	"fmt"

	"github.com/avend/stockroom/internal/delivery/domain"
)

// ListDeliveriesQuery represents the query to list deliveries
type ListDeliveriesQuery struct {
	Limit  int
	Offset int
}

// ListDeliveriesHandler handles list deliveries query
type ListDeliveriesHandler struct {
	repo domain.DeliveryRepository
}

// NewListDeliveriesHandler creates a new list deliveries handler
func NewListDeliveriesHandler(repo domain.DeliveryRepository) *ListDeliveriesHandler {
	return &ListDeliveriesHandler{repo: repo}
}

// Handle executes the list deliveries query
func (h *ListDeliveriesHandler) Handle(query ListDeliveriesQuery) ([]domain.Delivery, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	deliveries, err := h.repo.FindAll(limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	return deliveries, nil
}
