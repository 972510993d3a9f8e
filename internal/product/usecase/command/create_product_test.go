package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/avend/stockroom/internal/permission"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/product/domain"
	productrepo "github.com/avend/stockroom/internal/product/repository"
	supplierdomain "github.com/avend/stockroom/internal/supplier/domain"
	supplierrepo "github.com/avend/stockroom/internal/supplier/repository"
)

func setup(t *testing.T) (*productrepo.GormProductRepository, *supplierrepo.GormSupplierRepository, *permission.Config, uint) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	products := productrepo.NewGormProductRepository(db)
	require.NoError(t, products.AutoMigrate())
	suppliers := supplierrepo.NewGormSupplierRepository(db)
	require.NoError(t, suppliers.AutoMigrate())

	supplier := &supplierdomain.Supplier{Name: "Acme", Address: "Factory Road 1"}
	require.NoError(t, suppliers.Create(supplier))

	config := permission.NewConfig(&permdomain.PermissionSet{ProductCreate: 5})
	return products, suppliers, config, supplier.SupplierID
}

func TestCreateProduct(t *testing.T) {
	products, suppliers, config, supplierID := setup(t)
	handler := NewCreateProductHandler(products, suppliers, config)

	item, err := handler.Handle(CreateProductCommand{
		ActorLevel:   5,
		Description:  "widget",
		SupplierID:   supplierID,
		Stock:        3,
		RestockLimit: 10,
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ProductID)
	assert.Equal(t, 3, item.Stock)
}

func TestCreateProductBelowThreshold(t *testing.T) {
	products, suppliers, config, supplierID := setup(t)
	handler := NewCreateProductHandler(products, suppliers, config)

	_, err := handler.Handle(CreateProductCommand{
		ActorLevel:  4,
		Description: "widget",
		SupplierID:  supplierID,
	})
	assert.ErrorIs(t, err, permdomain.ErrForbidden)
}

func TestCreateProductUnknownSupplier(t *testing.T) {
	products, suppliers, config, _ := setup(t)
	handler := NewCreateProductHandler(products, suppliers, config)

	_, err := handler.Handle(CreateProductCommand{
		ActorLevel:  5,
		Description: "widget",
		SupplierID:  999,
	})
	assert.ErrorIs(t, err, domain.ErrUnknownSupplier)
}

func TestUpdateProductKeepsStock(t *testing.T) {
	products, suppliers, config, supplierID := setup(t)

	created, err := NewCreateProductHandler(products, suppliers, config).Handle(CreateProductCommand{
		ActorLevel:  5,
		Description: "widget",
		SupplierID:  supplierID,
		Stock:       7,
	})
	require.NoError(t, err)

	limit := 4
	updated, err := NewUpdateProductHandler(products, suppliers, config).Handle(UpdateProductCommand{
		ActorLevel:   5,
		ProductID:    created.ProductID,
		Description:  "sturdier widget",
		SupplierID:   supplierID,
		RestockLimit: &limit,
	})
	require.NoError(t, err)

	assert.Equal(t, "sturdier widget", updated.Description)
	assert.Equal(t, 4, updated.RestockLimit)
	assert.Equal(t, 7, updated.Stock, "descriptive updates never touch stock")
}

func TestDeleteProduct(t *testing.T) {
	products, suppliers, config, supplierID := setup(t)

	created, err := NewCreateProductHandler(products, suppliers, config).Handle(CreateProductCommand{
		ActorLevel:  5,
		Description: "widget",
		SupplierID:  supplierID,
	})
	require.NoError(t, err)

	require.NoError(t, NewDeleteProductHandler(products, config).Handle(DeleteProductCommand{
		ActorLevel: 5,
		ProductID:  created.ProductID,
	}))

	_, err = products.FindByID(created.ProductID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
