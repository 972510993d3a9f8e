package command

import (
	"fmt"
	"time"

	"github.com/avend/stockroom/internal/disposal/domain"
	"github.com/avend/stockroom/internal/permission"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	userdomain "github.com/avend/stockroom/internal/user/domain"
)

// LineItem is one product/quantity pair of a disposal
type LineItem struct {
	ProductID uint
	Quantity  int
}

// RecordDisposalCommand represents the command to write off stock
type RecordDisposalCommand struct {
	ActorID    string
	ActorLevel int
	Reason     string
	Items      []LineItem
}

// RecordDisposalHandler handles the record disposal command
type RecordDisposalHandler struct {
	disposals   domain.DisposalRepository
	users       userdomain.UserRepository
	permissions *permission.Config
}

// NewRecordDisposalHandler creates a new record disposal handler
func NewRecordDisposalHandler(disposals domain.DisposalRepository, users userdomain.UserRepository, permissions *permission.Config) *RecordDisposalHandler {
	return &RecordDisposalHandler{disposals: disposals, users: users, permissions: permissions}
}

// Handle executes the record disposal command. Every line item is recorded
// and subtracted individually; stock floors at zero.
func (h *RecordDisposalHandler) Handle(cmd RecordDisposalCommand) (*domain.DisposedInventory, error) {
	if !h.permissions.Allowed(permdomain.ActionDisposalCreate, cmd.ActorLevel) {
		return nil, permdomain.ErrForbidden
	}

	if cmd.Reason == "" {
		return nil, fmt.Errorf("a disposal reason is required")
	}
	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("a disposal needs at least one line item")
	}
	for _, line := range cmd.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %d must be positive", line.ProductID)
		}
	}

	// The disposal is attributed to a real account
	if _, err := h.users.FindByID(cmd.ActorID); err != nil {
		return nil, err
	}

	disposal := &domain.DisposedInventory{
		Date:   time.Now(),
		Reason: cmd.Reason,
		UserID: cmd.ActorID,
	}
	for _, line := range cmd.Items {
		disposal.Reports = append(disposal.Reports, domain.DisposedInventoryReport{
			ProductID:        line.ProductID,
			QuantityDisposed: line.Quantity,
		})
	}

	if err := h.disposals.CreateWithItems(disposal); err != nil {
		return nil, err
	}
	return disposal, nil
}
