package domain

import (
	"errors"
	"time"
)

// ErrNotFound signals that the requested disposal does not exist
var ErrNotFound = errors.New("disposal not found")

// DisposedInventory represents one write-off of stock, recorded against the
// user who performed it
type DisposedInventory struct {
	DisposalID uint                      `json:"disposal_id" gorm:"primaryKey"`
	Date       time.Time                 `json:"date" gorm:"not null"`
	Reason     string                    `json:"reason" gorm:"not null"`
	UserID     string                    `json:"user_id" gorm:"not null;index"`
	Reports    []DisposedInventoryReport `json:"reports" gorm:"foreignKey:DisposalID"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// TableName specifies the table name
func (DisposedInventory) TableName() string {
	return "disposed_inventories"
}

// DisposedInventoryReport is one product/quantity line item of a disposal
type DisposedInventoryReport struct {
	DisposalID       uint `json:"-" gorm:"primaryKey;autoIncrement:false"`
	ProductID        uint `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
	QuantityDisposed int  `json:"quantity_disposed" gorm:"not null"`
}

// TableName specifies the table name
func (DisposedInventoryReport) TableName() string {
	return "disposed_inventory_reports"
}

// DisposalRepository defines the contract for disposal data access.
// CreateWithItems persists the disposal, its reports, and the per-line stock
// subtraction as one atomic unit of work.
type DisposalRepository interface {
	CreateWithItems(disposal *DisposedInventory) error
	FindByID(disposalID uint) (*DisposedInventory, error)
	FindAll(limit, offset int) ([]DisposedInventory, error)
}
