package domain

import (
	"errors"
	"time"
)

// ErrNotFound signals that the requested supplier does not exist
var ErrNotFound = errors.New("supplier not found")

// Supplier represents a product supplier
type Supplier struct {
	SupplierID uint      `json:"supplier_id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"not null"`
	Address    string    `json:"address" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierRepository defines the contract for supplier data access
type SupplierRepository interface {
	Create(supplier *Supplier) error
	FindByID(supplierID uint) (*Supplier, error)
	FindAll(limit, offset int) ([]Supplier, error)
	Update(supplier *Supplier) error
	Delete(supplierID uint) error
}
