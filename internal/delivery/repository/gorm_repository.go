package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avend/stockroom/internal/delivery/domain"
	productdomain "github.com/avend/stockroom/internal/product/domain"
	"github.com/avend/stockroom/pkg/database"
)

// GormDeliveryRepository implements DeliveryRepository using GORM
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GORM delivery repository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GormDeliveryRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Delivery{}, &domain.InventoryOrder{})
}

// Create inserts a delivery together with its line items
func (r *GormDeliveryRepository) Create(delivery *domain.Delivery) error {
	if err := r.db.Create(delivery).Error; err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	return nil
}

// FindByID retrieves a delivery with its line items
func (r *GormDeliveryRepository) FindByID(deliveryID uint) (*domain.Delivery, error) {
	var delivery domain.Delivery
	if err := r.db.Preload("Items").First(&delivery, deliveryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find delivery: %w", err)
	}
	return &delivery, nil
}

// FindAll retrieves deliveries with pagination, newest first
func (r *GormDeliveryRepository) FindAll(limit, offset int) ([]domain.Delivery, error) {
	var deliveries []domain.Delivery
	query := r.db.Preload("Items").Order("delivery_id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&deliveries).Error; err != nil {
		return nil, fmt.Errorf("failed to find deliveries: %w", err)
	}
	return deliveries, nil
}

// Confirm applies the pending -> delivered transition: every line item's
// quantity is added to its product's stock and the status flips, all inside
// one transaction with the touched rows locked.
func (r *GormDeliveryRepository) Confirm(deliveryID uint) (*domain.Delivery, error) {
	var delivery domain.Delivery

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&delivery, deliveryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to load delivery: %w", err)
		}
		if !delivery.IsPending() {
			return domain.ErrNotPending
		}

		if err := tx.Where("delivery_id = ?", deliveryID).Find(&delivery.Items).Error; err != nil {
			return fmt.Errorf("failed to load delivery items: %w", err)
		}

		for _, line := range delivery.Items {
			var item productdomain.InventoryItem
			if err := database.LockForUpdate(tx).First(&item, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return productdomain.ErrNotFound
				}
				return fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
			}
			item.AddStock(line.QuantityOrdered)
			if err := tx.Model(&item).Update("stock", item.Stock).Error; err != nil {
				return fmt.Errorf("failed to update stock for product %d: %w", line.ProductID, err)
			}
		}

		delivery.Status = domain.StatusDelivered
		return tx.Model(&delivery).Update("status", domain.StatusDelivered).Error
	})
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// Reject applies the pending -> rejected transition and records the reason.
// Stock is untouched.
func (r *GormDeliveryRepository) Reject(deliveryID uint, reason string) (*domain.Delivery, error) {
	var delivery domain.Delivery

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&delivery, deliveryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to load delivery: %w", err)
		}
		if !delivery.IsPending() {
			return domain.ErrNotPending
		}

		delivery.Status = domain.StatusRejected
		delivery.RejectionReason = reason
		return tx.Model(&delivery).Updates(map[string]interface{}{
			"status":           domain.StatusRejected,
			"rejection_reason": reason,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// CountPending returns the number of deliveries awaiting confirmation
func (r *GormDeliveryRepository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Delivery{}).
		Where("status = ?", domain.StatusPending).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending deliveries: %w", err)
	}
	return count, nil
}
