package domain

import (
	"errors"
	"time"
)

// ErrNotFound signals that the requested transaction does not exist
var ErrNotFound = errors.New("transaction not found")

// Transaction represents one sale consisting of one or more line items
type Transaction struct {
	TransactionID uint                `json:"transaction_id" gorm:"primaryKey"`
	Date          time.Time           `json:"date" gorm:"not null"`
	Reports       []TransactionReport `json:"reports" gorm:"foreignKey:TransactionID"`
	CreatedAt     time.Time           `json:"created_at"`
}

// TableName specifies the table name
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionReport is one product/quantity line item of a sale
type TransactionReport struct {
	TransactionID uint `json:"-" gorm:"primaryKey;autoIncrement:false"`
	ProductID     uint `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
	QuantitySold  int  `json:"quantity_sold" gorm:"not null"`
}

// TableName specifies the table name
func (TransactionReport) TableName() string {
	return "transaction_reports"
}

// TransactionRepository defines the contract for transaction data access.
// CreateWithItems persists the transaction, its reports, and the per-line
// stock subtraction as one atomic unit of work.
type TransactionRepository interface {
	CreateWithItems(transaction *Transaction) error
	FindByID(transactionID uint) (*Transaction, error)
	FindAll(limit, offset int) ([]Transaction, error)
}
