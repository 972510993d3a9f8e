package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	productdomain "github.com/avend/stockroom/internal/product/domain"
	productrepo "github.com/avend/stockroom/internal/product/repository"
	"github.com/avend/stockroom/internal/transaction/domain"
)

func setup(t *testing.T) (*GormTransactionRepository, *productrepo.GormProductRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	products := productrepo.NewGormProductRepository(db)
	require.NoError(t, products.AutoMigrate())

	transactions := NewGormTransactionRepository(db)
	require.NoError(t, transactions.AutoMigrate())

	return transactions, products
}

func seedProduct(t *testing.T, products *productrepo.GormProductRepository, stock int) uint {
	t.Helper()
	item := &productdomain.InventoryItem{
		Description: "widget",
		SupplierID:  1,
		Stock:       stock,
	}
	require.NoError(t, products.Create(item))
	return item.ProductID
}

func TestCreateWithItemsSubtractsStock(t *testing.T) {
	transactions, products := setup(t)

	first := seedProduct(t, products, 5)
	second := seedProduct(t, products, 8)

	transaction := &domain.Transaction{
		Date: time.Now(),
		Reports: []domain.TransactionReport{
			{ProductID: first, QuantitySold: 3},
			{ProductID: second, QuantitySold: 8},
		},
	}
	require.NoError(t, transactions.CreateWithItems(transaction))
	require.NotZero(t, transaction.TransactionID)

	firstItem, err := products.FindByID(first)
	require.NoError(t, err)
	assert.Equal(t, 2, firstItem.Stock)

	secondItem, err := products.FindByID(second)
	require.NoError(t, err)
	assert.Equal(t, 0, secondItem.Stock)
}

func TestCreateWithItemsFloorsAtZero(t *testing.T) {
	transactions, products := setup(t)

	productID := seedProduct(t, products, 2)

	transaction := &domain.Transaction{
		Date: time.Now(),
		Reports: []domain.TransactionReport{
			{ProductID: productID, QuantitySold: 7},
		},
	}
	require.NoError(t, transactions.CreateWithItems(transaction))

	item, err := products.FindByID(productID)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Stock, "oversold stock floors at zero")
}

func TestCreateWithItemsUnknownProductRollsBack(t *testing.T) {
	transactions, products := setup(t)

	productID := seedProduct(t, products, 5)

	transaction := &domain.Transaction{
		Date: time.Now(),
		Reports: []domain.TransactionReport{
			{ProductID: productID, QuantitySold: 2},
			{ProductID: 999, QuantitySold: 1},
		},
	}
	err := transactions.CreateWithItems(transaction)
	assert.ErrorIs(t, err, productdomain.ErrNotFound)

	// The first line's stock change must have been rolled back
	item, err := products.FindByID(productID)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Stock)

	all, err := transactions.FindAll(0, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFindByIDPreloadsReports(t *testing.T) {
	transactions, products := setup(t)

	productID := seedProduct(t, products, 5)
	transaction := &domain.Transaction{
		Date: time.Now(),
		Reports: []domain.TransactionReport{
			{ProductID: productID, QuantitySold: 1},
		},
	}
	require.NoError(t, transactions.CreateWithItems(transaction))

	loaded, err := transactions.FindByID(transaction.TransactionID)
	require.NoError(t, err)
	require.Len(t, loaded.Reports, 1)
	assert.Equal(t, productID, loaded.Reports[0].ProductID)

	_, err = transactions.FindByID(999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
