package domain

import (
	"errors"
	"time"
)

// Action names gated by account-level thresholds
const (
	ActionProductCreate     = "ProductCreate"
	ActionDeliveryCreate    = "DeliveryCreate"
	ActionDeliveryConfirm   = "DeliveryConfirm"
	ActionDeliveryReject    = "DeliveryReject"
	ActionDisposalCreate    = "DisposalCreate"
	ActionTransactionCreate = "TransactionCreate"
	ActionSupplierCreate    = "SupplierCreate"
)

var (
	// ErrForbidden signals that the acting user's account level is below the
	// threshold for the attempted action
	ErrForbidden = errors.New("insufficient account level")
)

// PermissionSet is the single persisted row of per-action minimum account levels
type PermissionSet struct {
	ID                uint      `json:"-" gorm:"primaryKey"`
	ProductCreate     int       `json:"product_create" gorm:"not null;default:5"`
	DeliveryCreate    int       `json:"delivery_create" gorm:"not null;default:2"`
	DeliveryConfirm   int       `json:"delivery_confirm" gorm:"not null;default:2"`
	DeliveryReject    int       `json:"delivery_reject" gorm:"not null;default:5"`
	DisposalCreate    int       `json:"disposal_create" gorm:"not null;default:2"`
	TransactionCreate int       `json:"transaction_create" gorm:"not null;default:1"`
	SupplierCreate    int       `json:"supplier_create" gorm:"not null;default:5"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (PermissionSet) TableName() string {
	return "permissions"
}

// Thresholds returns the row as an action → minimum level map
func (p *PermissionSet) Thresholds() map[string]int {
	return map[string]int{
		ActionProductCreate:     p.ProductCreate,
		ActionDeliveryCreate:    p.DeliveryCreate,
		ActionDeliveryConfirm:   p.DeliveryConfirm,
		ActionDeliveryReject:    p.DeliveryReject,
		ActionDisposalCreate:    p.DisposalCreate,
		ActionTransactionCreate: p.TransactionCreate,
		ActionSupplierCreate:    p.SupplierCreate,
	}
}

// Apply overwrites recognized actions from the given map and ignores the rest
func (p *PermissionSet) Apply(thresholds map[string]int) {
	for action, level := range thresholds {
		switch action {
		case ActionProductCreate:
			p.ProductCreate = level
		case ActionDeliveryCreate:
			p.DeliveryCreate = level
		case ActionDeliveryConfirm:
			p.DeliveryConfirm = level
		case ActionDeliveryReject:
			p.DeliveryReject = level
		case ActionDisposalCreate:
			p.DisposalCreate = level
		case ActionTransactionCreate:
			p.TransactionCreate = level
		case ActionSupplierCreate:
			p.SupplierCreate = level
		}
	}
}

// PermissionRepository defines the contract for threshold persistence
type PermissionRepository interface {
	Load() (*PermissionSet, error)
	Save(set *PermissionSet) error
}
