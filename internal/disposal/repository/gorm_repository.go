package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avend/stockroom/internal/disposal/domain"
	productdomain "github.com/avend/stockroom/internal/product/domain"
	"github.com/avend/stockroom/pkg/database"
)

// GormDisposalRepository implements DisposalRepository using GORM
type GormDisposalRepository struct {
	db *gorm.DB
}

// NewGormDisposalRepository creates a new GORM disposal repository
func NewGormDisposalRepository(db *gorm.DB) *GormDisposalRepository {
	return &GormDisposalRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GormDisposalRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.DisposedInventory{}, &domain.DisposedInventoryReport{})
}

// CreateWithItems inserts the disposal and one report per line item, then
// subtracts each line's quantity from the product's stock, floored at zero.
// Every line is written individually; all of it lands in one transaction.
func (r *GormDisposalRepository) CreateWithItems(disposal *domain.DisposedInventory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		reports := disposal.Reports
		disposal.Reports = nil
		if err := tx.Create(disposal).Error; err != nil {
			return fmt.Errorf("failed to create disposal: %w", err)
		}

		for i := range reports {
			reports[i].DisposalID = disposal.DisposalID

			var item productdomain.InventoryItem
			if err := database.LockForUpdate(tx).First(&item, reports[i].ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return productdomain.ErrNotFound
				}
				return fmt.Errorf("failed to load product %d: %w", reports[i].ProductID, err)
			}

			if err := tx.Create(&reports[i]).Error; err != nil {
				return fmt.Errorf("failed to create disposal report: %w", err)
			}

			item.RemoveStock(reports[i].QuantityDisposed)
			if err := tx.Model(&item).Update("stock", item.Stock).Error; err != nil {
				return fmt.Errorf("failed to update stock for product %d: %w", reports[i].ProductID, err)
			}
		}

		disposal.Reports = reports
		return nil
	})
}

// FindByID retrieves a disposal with its reports
func (r *GormDisposalRepository) FindByID(disposalID uint) (*domain.DisposedInventory, error) {
	var disposal domain.DisposedInventory
	if err := r.db.Preload("Reports").First(&disposal, disposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find disposal: %w", err)
	}
	return &disposal, nil
}

// FindAll retrieves disposals with pagination, newest first
func (r *GormDisposalRepository) FindAll(limit, offset int) ([]domain.DisposedInventory, error) {
	var disposals []domain.DisposedInventory
	query := r.db.Preload("Reports").Order("disposal_id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&disposals).Error; err != nil {
		return nil, fmt.Errorf("failed to find disposals: %w", err)
	}
	return disposals, nil
}
