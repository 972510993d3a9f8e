package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	productdomain "github.com/avend/stockroom/internal/product/domain"
	"github.com/avend/stockroom/internal/transaction/domain"
	"github.com/avend/stockroom/pkg/database"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GormTransactionRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Transaction{}, &domain.TransactionReport{})
}

// CreateWithItems inserts the transaction and its reports and subtracts each
// line's quantity from the product's stock, floored at zero. Everything lands
// in one transaction with the product rows locked.
func (r *GormTransactionRepository) CreateWithItems(transaction *domain.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		reports := transaction.Reports
		transaction.Reports = nil
		if err := tx.Create(transaction).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}

		for i := range reports {
			reports[i].TransactionID = transaction.TransactionID

			var item productdomain.InventoryItem
			if err := database.LockForUpdate(tx).First(&item, reports[i].ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return productdomain.ErrNotFound
				}
				return fmt.Errorf("failed to load product %d: %w", reports[i].ProductID, err)
			}

			if err := tx.Create(&reports[i]).Error; err != nil {
				return fmt.Errorf("failed to create transaction report: %w", err)
			}

			item.RemoveStock(reports[i].QuantitySold)
			if err := tx.Model(&item).Update("stock", item.Stock).Error; err != nil {
				return fmt.Errorf("failed to update stock for product %d: %w", reports[i].ProductID, err)
			}
		}

		transaction.Reports = reports
		return nil
	})
}

// FindByID retrieves a transaction with its reports
func (r *GormTransactionRepository) FindByID(transactionID uint) (*domain.Transaction, error) {
	var transaction domain.Transaction
	if err := r.db.Preload("Reports").First(&transaction, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return &transaction, nil
}

// FindAll retrieves transactions with pagination, newest first
func (r *GormTransactionRepository) FindAll(limit, offset int) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	query := r.db.Preload("Reports").Order("transaction_id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}
	return transactions, nil
}
