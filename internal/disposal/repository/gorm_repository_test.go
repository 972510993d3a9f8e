package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/avend/stockroom/internal/disposal/domain"
	productdomain "github.com/avend/stockroom/internal/product/domain"
	productrepo "github.com/avend/stockroom/internal/product/repository"
)

func setup(t *testing.T) (*GormDisposalRepository, *productrepo.GormProductRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	products := productrepo.NewGormProductRepository(db)
	require.NoError(t, products.AutoMigrate())

	disposals := NewGormDisposalRepository(db)
	require.NoError(t, disposals.AutoMigrate())

	return disposals, products
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

// Every submitted line must be written and subtracted, not just the first one.
func TestCreateWithItemsRecordsEveryLine(t *testing.T) {
	disposals, products := setup(t)

	first := seedProduct(t, products, 10)
	second := seedProduct(t, products, 10)
	third := seedProduct(t, products, 10)

	disposal := &domain.DisposedInventory{
		Date:   time.Now(),
		Reason: "water damage",
		UserID: "jo",
		Reports: []domain.DisposedInventoryReport{
			{ProductID: first, QuantityDisposed: 1},
			{ProductID: second, QuantityDisposed: 2},
			{ProductID: third, QuantityDisposed: 3},
		},
	}
	require.NoError(t, disposals.CreateWithItems(disposal))

	loaded, err := disposals.FindByID(disposal.DisposalID)
	require.NoError(t, err)
	assert.Len(t, loaded.Reports, 3)
	assert.Equal(t, "water damage", loaded.Reason)
	assert.Equal(t, "jo", loaded.UserID)

	for productID, want := range map[uint]int{first: 9, second: 8, third: 7} {
		item, err := products.FindByID(productID)
		require.NoError(t, err)
		assert.Equal(t, want, item.Stock)
	}
}

func TestCreateWithItemsFloorsAtZero(t *testing.T) {
	disposals, products := setup(t)

	productID := seedProduct(t, products, 1)

	disposal := &domain.DisposedInventory{
		Date:   time.Now(),
		Reason: "expired",
		UserID: "jo",
		Reports: []domain.DisposedInventoryReport{
			{ProductID: productID, QuantityDisposed: 4},
		},
	}
	require.NoError(t, disposals.CreateWithItems(disposal))

	item, err := products.FindByID(productID)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Stock)
}

func TestFindAllNewestFirst(t *testing.T) {
	disposals, products := setup(t)

	productID := seedProduct(t, products, 10)

	for _, reason := range []string{"first", "second"} {
		disposal := &domain.DisposedInventory{
			Date:   time.Now(),
			Reason: reason,
			UserID: "jo",
			Reports: []domain.DisposedInventoryReport{
				{ProductID: productID, QuantityDisposed: 1},
			},
		}
		require.NoError(t, disposals.CreateWithItems(disposal))
	}

	all, err := disposals.FindAll(0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Reason)
	assert.Equal(t, "first", all[1].Reason)
}
