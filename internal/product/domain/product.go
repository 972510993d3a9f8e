package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound signals that the requested product does not exist
	ErrNotFound = errors.New("product not found")
	// ErrUnknownSupplier signals a create/update referencing a missing supplier
	ErrUnknownSupplier = errors.New("supplier not found")
)

// InventoryItem represents a tracked product. Stock is only mutated through
// the delivery-confirm, transaction, and disposal workflows.
type InventoryItem struct {
	ProductID    uint      `json:"product_id" gorm:"primaryKey"`
	Description  string    `json:"description" gorm:"not null"`
	SupplierID   uint      `json:"supplier_id" gorm:"not null;index"`
	Stock        int       `json:"stock" gorm:"not null;default:0"`
	RestockLimit int       `json:"restock_limit" gorm:"not null;default:0"`
	Image        string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// AddStock increases the stock count by the given quantity
func (i *InventoryItem) AddStock(quantity int) {
	i.Stock += quantity
}

// RemoveStock decreases the stock count, flooring at zero
func (i *InventoryItem) RemoveStock(quantity int) {
	i.Stock -= quantity
	if i.Stock < 0 {
		i.Stock = 0
	}
}

// NeedsRestock reports whether stock has fallen under the restock limit
func (i *InventoryItem) NeedsRestock() bool {
	return i.Stock < i.RestockLimit
}

// ProductRepository defines the contract for inventory item data access
type ProductRepository interface {
	Create(item *InventoryItem) error
	FindByID(productID uint) (*InventoryItem, error)
	FindAll(limit, offset int) ([]InventoryItem, error)
	FindLowStock(limit, offset int) ([]InventoryItem, error)
	Update(item *InventoryItem) error
	Delete(productID uint) error
	Count() (int64, error)
}
