package command

import (
	"fmt"

	"github.com/avend/stockroom/internal/delivery/domain"
	"github.com/avend/stockroom/internal/permission"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
)

// RejectDeliveryCommand represents the command to reject a pending delivery
type RejectDeliveryCommand struct {
	ActorLevel int
	DeliveryID uint
	Reason     string
}

// RejectDeliveryHandler handles delivery rejection command
type RejectDeliveryHandler struct {
	deliveries  domain.DeliveryRepository
	permissions *permission.Config
}

// NewRejectDeliveryHandler creates a new reject delivery handler
func NewRejectDeliveryHandler(deliveries domain.DeliveryRepository, permissions *permission.Config) *RejectDeliveryHandler {
	return &RejectDeliveryHandler{deliveries: deliveries, permissions: permissions}
}

// Handle executes the reject delivery command. Stock is never touched.
func (h *RejectDeliveryHandler) Handle(cmd RejectDeliveryCommand) (*domain.Delivery, error) {
	if !h.permissions.Allowed(permdomain.ActionDeliveryReject, cmd.ActorLevel) {
		return nil, permdomain.ErrForbidden
	}
	if cmd.Reason == "" {
		return nil, fmt.Errorf("a rejection reason is required")
	}
	return h.deliveries.Reject(cmd.DeliveryID, cmd.Reason)
}
