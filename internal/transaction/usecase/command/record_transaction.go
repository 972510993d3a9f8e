package command

import (
	"fmt"
	"time"

	"github.com/avend/stockroom/internal/permission"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/transaction/domain"
)

// LineItem is one product/quantity pair of a sale
type LineItem struct {
	ProductID uint
	Quantity  int
}

// RecordTransactionCommand represents the command to record a sale
type RecordTransactionCommand struct {
	ActorLevel int
	Date       time.Time
	Items      []LineItem
}

// RecordTransactionHandler handles the record transaction command
type RecordTransactionHandler struct {
	transactions domain.TransactionRepository
	permissions  *permission.Config
}

// NewRecordTransactionHandler creates a new record transaction handler
func NewRecordTransactionHandler(transactions domain.TransactionRepository, permissions *permission.Config) *RecordTransactionHandler {
	return &RecordTransactionHandler{transactions: transactions, permissions: permissions}
}

// Handle executes the record transaction command. Each line subtracts its
// quantity from the product's stock, floored at zero, atomically across all
// lines.
func (h *RecordTransactionHandler) Handle(cmd RecordTransactionCommand) (*domain.Transaction, error) {
	if !h.permissions.Allowed(permdomain.ActionTransactionCreate, cmd.ActorLevel) {
		return nil, permdomain.ErrForbidden
	}

	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("a transaction needs at least one line item")
	}
	for _, line := range cmd.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %d must be positive", line.ProductID)
		}
	}

	date := cmd.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &domain.Transaction{Date: date}
	for _, line := range cmd.Items {
		transaction.Reports = append(transaction.Reports, domain.TransactionReport{
			ProductID:    line.ProductID,
			QuantitySold: line.Quantity,
		})
	}

	if err := h.transactions.CreateWithItems(transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}
