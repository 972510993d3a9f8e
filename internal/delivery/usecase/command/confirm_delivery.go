package command

import (
	"github.com/avend/stockroom/internal/delivery/domain"
	"github.com/avend/stockroom/internal/permission"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
)

// ConfirmDeliveryCommand represents the command to confirm a pending delivery
type ConfirmDeliveryCommand struct {
	ActorLevel int
	DeliveryID uint
}

// ConfirmDeliveryHandler handles delivery confirmation command
type ConfirmDeliveryHandler struct {
	deliveries  domain.DeliveryRepository
	permissions *permission.Config
}

// NewConfirmDeliveryHandler creates a new confirm delivery handler
func NewConfirmDeliveryHandler(deliveries domain.DeliveryRepository, permissions *permission.Config) *ConfirmDeliveryHandler {
	return &ConfirmDeliveryHandler{deliveries: deliveries, permissions: permissions}
}

// Handle executes the confirm delivery command. All line-item stock increments
// and the status change land atomically, or not at all.
func (h *ConfirmDeliveryHandler) Handle(cmd ConfirmDeliveryCommand) (*domain.Delivery, error) {
	if !h.permissions.Allowed(permdomain.ActionDeliveryConfirm, cmd.ActorLevel) {
		return nil, permdomain.ErrForbidden
	}
	return h.deliveries.Confirm(cmd.DeliveryID)
}
