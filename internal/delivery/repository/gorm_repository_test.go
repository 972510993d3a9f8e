package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/avend/stockroom/internal/delivery/domain"
	productdomain "github.com/avend/stockroom/internal/product/domain"
	productrepo "github.com/avend/stockroom/internal/product/repository"
)

func setup(t *testing.T) (*GormDeliveryRepository, *productrepo.GormProductRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	products := productrepo.NewGormProductRepository(db)
	require.NoError(t, products.AutoMigrate())

	deliveries := NewGormDeliveryRepository(db)
	require.NoError(t, deliveries.AutoMigrate())

	return deliveries, products
}

func seedProduct(t *testing.T, products *productrepo.GormProductRepository, stock int) uint {
	t.Helper()
	item := &productdomain.InventoryItem{
		Description:  "widget",
		SupplierID:   1,
		Stock:        stock,
		RestockLimit: 10,
	}
	require.NoError(t, products.Create(item))
	return item.ProductID
}

func pendingDelivery(t *testing.T, deliveries *GormDeliveryRepository, lines map[uint]int) uint {
	t.Helper()
	delivery := &domain.Delivery{
		DateOrdered:  time.Now(),
		DateExpected: time.Now().Add(48 * time.Hour),
		SupplierID:   1,
		Status:       domain.StatusPending,
	}
	for productID, quantity := range lines {
		delivery.Items = append(delivery.Items, domain.InventoryOrder{
			ProductID:       productID,
			QuantityOrdered: quantity,
		})
	}
	require.NoError(t, deliveries.Create(delivery))
	return delivery.DeliveryID
}

func TestConfirmAddsStockAndFlipsStatus(t *testing.T) {
	deliveries, products := setup(t)

	first := seedProduct(t, products, 2)
	second := seedProduct(t, products, 0)
	deliveryID := pendingDelivery(t, deliveries, map[uint]int{first: 5, second: 3})

	confirmed, err := deliveries.Confirm(deliveryID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, confirmed.Status)

	firstItem, err := products.FindByID(first)
	require.NoError(t, err)
	assert.Equal(t, 7, firstItem.Stock)

	secondItem, err := products.FindByID(second)
	require.NoError(t, err)
	assert.Equal(t, 3, secondItem.Stock)
}

func TestConfirmOnlyOncePerDelivery(t *testing.T) {
	deliveries, products := setup(t)

	productID := seedProduct(t, products, 0)
	deliveryID := pendingDelivery(t, deliveries, map[uint]int{productID: 4})

	_, err := deliveries.Confirm(deliveryID)
	require.NoError(t, err)

	_, err = deliveries.Confirm(deliveryID)
	assert.ErrorIs(t, err, domain.ErrNotPending)

	// Stock was only added once
	item, err := products.FindByID(productID)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Stock)
}

func TestConfirmUnknownDelivery(t *testing.T) {
	deliveries, _ := setup(t)

	_, err := deliveries.Confirm(999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRejectLeavesStockAlone(t *testing.T) {
	deliveries, products := setup(t)

	productID := seedProduct(t, products, 1)
	deliveryID := pendingDelivery(t, deliveries, map[uint]int{productID: 9})

	rejected, err := deliveries.Reject(deliveryID, "damaged packaging")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "damaged packaging", rejected.RejectionReason)

	item, err := products.FindByID(productID)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Stock)

	// A rejected delivery can no longer be confirmed
	_, err = deliveries.Confirm(deliveryID)
	assert.ErrorIs(t, err, domain.ErrNotPending)
}

func TestFindAllNewestFirst(t *testing.T) {
	deliveries, products := setup(t)

	productID := seedProduct(t, products, 0)
	first := pendingDelivery(t, deliveries, map[uint]int{productID: 1})
	second := pendingDelivery(t, deliveries, map[uint]int{productID: 2})

	all, err := deliveries.FindAll(0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second, all[0].DeliveryID)
	assert.Equal(t, first, all[1].DeliveryID)
	assert.Len(t, all[0].Items, 1)
}

func TestCountPending(t *testing.T) {
	deliveries, products := setup(t)

	productID := seedProduct(t, products, 0)
	pendingDelivery(t, deliveries, map[uint]int{productID: 1})
	confirmedID := pendingDelivery(t, deliveries, map[uint]int{productID: 1})

	_, err := deliveries.Confirm(confirmedID)
	require.NoError(t, err)

	count, err := deliveries.CountPending()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
