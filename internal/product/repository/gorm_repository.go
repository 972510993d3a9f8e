package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avend/stockroom/internal/product/domain"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.InventoryItem{})
}

// Create inserts a new inventory item
func (r *GormProductRepository) Create(item *domain.InventoryItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// FindByID retrieves an inventory item by product id
func (r *GormProductRepository) FindByID(productID uint) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	if err := r.db.First(&item, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &item, nil
}

// FindAll retrieves inventory items with pagination
func (r *GormProductRepository) FindAll(limit, offset int) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	query := r.db.Order("product_id")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return items, nil
}

// FindLowStock retrieves items whose stock is under their restock limit
func (r *GormProductRepository) FindLowStock(limit, offset int) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	query := r.db.Where("stock < restock_limit").Order("product_id")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find low stock products: %w", err)
	}
	return items, nil
}

// Update saves an inventory item's descriptive fields
func (r *GormProductRepository) Update(item *domain.InventoryItem) error {
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete removes an inventory item
func (r *GormProductRepository) Delete(productID uint) error {
	result := r.db.Delete(&domain.InventoryItem{}, productID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of inventory items
func (r *GormProductRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&domain.InventoryItem{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
