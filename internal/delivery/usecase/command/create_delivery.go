package command

import (
	"fmt"
	"time"

	"github.com/avend/stockroom/internal/delivery/domain"
	"github.com/avend/stockroom/internal/permission"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	productdomain "github.com/avend/stockroom/internal/product/domain"
	supplierdomain "github.com/avend/stockroom/internal/supplier/domain"
)

// LineItem is one product/quantity pair posted from a multi-line form
type LineItem struct {
	ProductID uint
	Quantity  int
}

// CreateDeliveryCommand represents the command to register a pending delivery
type CreateDeliveryCommand struct {
	ActorLevel   int
	DateExpected time.Time
	SupplierID   uint
	Items        []LineItem
}

// CreateDeliveryHandler handles delivery creation command
type CreateDeliveryHandler struct {
	deliveries  domain.DeliveryRepository
	products    productdomain.ProductRepository
	suppliers   supplierdomain.SupplierRepository
	permissions *permission.Config
}

// NewCreateDeliveryHandler creates a new create delivery handler
func NewCreateDeliveryHandler(
	deliveries domain.DeliveryRepository,
	products productdomain.ProductRepository,
	suppliers supplierdomain.SupplierRepository,
	permissions *permission.Config,
) *CreateDeliveryHandler {
	return &CreateDeliveryHandler{
		deliveries:  deliveries,
		products:    products,
		suppliers:   suppliers,
		permissions: permissions,
	}
}

// Handle executes the create delivery command. The delivery starts pending;
// stock only moves when it is confirmed.
func (h *CreateDeliveryHandler) Handle(cmd CreateDeliveryCommand) (*domain.Delivery, error) {
	if !h.permissions.Allowed(permdomain.ActionDeliveryCreate, cmd.ActorLevel) {
		return nil, permdomain.ErrForbidden
	}

	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("a delivery needs at least one line item")
	}
	for _, line := range cmd.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %d must be positive", line.ProductID)
		}
	}

	if _, err := h.suppliers.FindByID(cmd.SupplierID); err != nil {
		return nil, err
	}
	for _, line := range cmd.Items {
		if _, err := h.products.FindByID(line.ProductID); err != nil {
			return nil, err
		}
	}

	delivery := &domain.Delivery{
		DateOrdered:  time.Now(),
		DateExpected: cmd.DateExpected,
		SupplierID:   cmd.SupplierID,
		Status:       domain.StatusPending,
	}
	for _, line := range cmd.Items {
		delivery.Items = append(delivery.Items, domain.InventoryOrder{
			ProductID:       line.ProductID,
			QuantityOrdered: line.Quantity,
		})
	}

	if err := h.deliveries.Create(delivery); err != nil {
		return nil, err
	}
	return delivery, nil
}
