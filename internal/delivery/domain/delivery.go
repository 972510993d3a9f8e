package domain

import (
	"errors"
	"time"
)

// Delivery status values. A delivery only ever moves pending -> delivered or
// pending -> rejected.
const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusRejected  = "rejected"
)

var (
	// ErrNotFound signals that the requested delivery does not exist
	ErrNotFound = errors.New("delivery not found")
	// ErrNotPending signals a confirm/reject attempt on an already settled delivery
	ErrNotPending = errors.New("delivery is not pending")
)

// Delivery represents an inbound order from a supplier
type Delivery struct {
	DeliveryID      uint             `json:"delivery_id" gorm:"primaryKey"`
	DateOrdered     time.Time        `json:"date_ordered" gorm:"not null"`
	DateExpected    time.Time        `json:"date_expected" gorm:"not null"`
	SupplierID      uint             `json:"supplier_id" gorm:"not null;index"`
	Status          string           `json:"status" gorm:"not null;default:'pending'"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	Items           []InventoryOrder `json:"items" gorm:"foreignKey:DeliveryID"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TableName specifies the table name
func (Delivery) TableName() string {
	return "deliveries"
}

// IsPending reports whether the delivery can still be confirmed or rejected
func (d *Delivery) IsPending() bool {
	return d.Status == StatusPending
}

// InventoryOrder is one product/quantity line item of a delivery
type InventoryOrder struct {
	DeliveryID      uint `json:"-" gorm:"primaryKey;autoIncrement:false"`
	ProductID       uint `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
	QuantityOrdered int  `json:"quantity_ordered" gorm:"not null"`
}

// TableName specifies the table name
func (InventoryOrder) TableName() string {
	return "inventory_orders"
}

// DeliveryRepository defines the contract for delivery data access. Confirm
// and Reject apply the status transition and, for Confirm, the line-item
// stock increments in one atomic unit of work.
type DeliveryRepository interface {
	Create(delivery *Delivery) error
	FindByID(deliveryID uint) (*Delivery, error)
	FindAll(limit, offset int) ([]Delivery, error)
	Confirm(deliveryID uint) (*Delivery, error)
	Reject(deliveryID uint, reason string) (*Delivery, error)
	CountPending() (int64, error)
}
