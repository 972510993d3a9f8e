package query

import (
	"github.com/avend/stockroom/internal/delivery/domain"
)

// GetDeliveryQuery represents the query to get a delivery by id
type GetDeliveryQuery struct {
	DeliveryID uint
}

// GetDeliveryHandler handles get delivery query
type GetDeliveryHandler struct {
	repo domain.DeliveryRepository
}

// NewGetDeliveryHandler creates a new get delivery handler
func NewGetDeliveryHandler(repo domain.DeliveryRepository) *GetDeliveryHandler {
	return &GetDeliveryHandler{repo: repo}
}

// Handle executes the get delivery query
func (h *GetDeliveryHandler) Handle(query GetDeliveryQuery) (*domain.Delivery, error) {
	return h.repo.FindByID(query.DeliveryID)
}
