package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avend/stockroom/internal/product/domain"
)

var errDriver = errors.New(`pq: connection refused at "10.0.0.7:5432"`)

type failingProductRepo struct{}

func (failingProductRepo) Create(*domain.InventoryItem) error               { return errDriver }
func (failingProductRepo) FindByID(uint) (*domain.InventoryItem, error)     { return nil, errDriver }
func (failingProductRepo) FindAll(int, int) ([]domain.InventoryItem, error) { return nil, errDriver }
func (failingProductRepo) FindLowStock(int, int) ([]domain.InventoryItem, error) {
	return nil, errDriver
}
func (failingProductRepo) Update(*domain.InventoryItem) error { return errDriver }
func (failingProductRepo) Delete(uint) error                  { return errDriver }
func (failingProductRepo) Count() (int64, error)              { return 0, errDriver }

// Database errors on list endpoints must be replaced with a generic message,
// never forwarded to the client.
func TestListEndpointsHideDatabaseErrors(t *testing.T) {
	h := NewProductHandler(nil, nil, nil, failingProductRepo{}, nil, nil)

	endpoints := map[string]http.HandlerFunc{
		"/products":           h.ListProducts,
		"/products/low_stock": h.ListLowStock,
	}

	for path, endpoint := range endpoints {
		rec := httptest.NewRecorder()
		endpoint(rec, httptest.NewRequest(http.MethodGet, path, nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Internal server error", path)
		assert.NotContains(t, rec.Body.String(), "connection refused", path)
	}
}
