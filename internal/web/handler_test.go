package web

import (
	"bytes"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deliverydomain "github.com/avend/stockroom/internal/delivery/domain"
	disposaldomain "github.com/avend/stockroom/internal/disposal/domain"
	productdomain "github.com/avend/stockroom/internal/product/domain"
	userdomain "github.com/avend/stockroom/internal/user/domain"
)

func parseForm(t *testing.T, values url.Values) []lineItem {
	t.Helper()
	r := httptest.NewRequest("POST", "/add_delivery", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, r.ParseForm())
	return parseLineItems(r)
}

func TestParseLineItemsZipsArrays(t *testing.T) {
	items := parseForm(t, url.Values{
		"products":   {"1", "2", "3"},
		"quantities": {"5", "3", "7"},
	})

	require.Len(t, items, 3)
	assert.Equal(t, lineItem{ProductID: 1, Quantity: 5}, items[0])
	assert.Equal(t, lineItem{ProductID: 2, Quantity: 3}, items[1])
	assert.Equal(t, lineItem{ProductID: 3, Quantity: 7}, items[2])
}

func TestParseLineItemsDropsEmptyRows(t *testing.T) {
	items := parseForm(t, url.Values{
		"products":   {"0", "2", "4", "5"},
		"quantities": {"5", "0", "-1", "2"},
	})

	require.Len(t, items, 1)
	assert.Equal(t, lineItem{ProductID: 5, Quantity: 2}, items[0])
}

func TestParseLineItemsUnevenArrays(t *testing.T) {
	items := parseForm(t, url.Values{
		"products":   {"1", "2"},
		"quantities": {"5"},
	})

	require.Len(t, items, 1)
	assert.Equal(t, lineItem{ProductID: 1, Quantity: 5}, items[0])
}

// The overview page lists all products plus the recent deliveries and
// disposals next to the low-stock summary.
func TestHomeTemplateRendersOverview(t *testing.T) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "home.html", homePage{
		basePage:          basePage{User: &userdomain.User{UserID: "jo", FirstName: "Jo", LastName: "Doe"}},
		PendingDeliveries: 1,
		Products: []productdomain.InventoryItem{
			{ProductID: 4, Description: "crate of bolts", SupplierID: 2, Stock: 12, RestockLimit: 5},
		},
		Deliveries: []deliverydomain.Delivery{
			{
				DeliveryID:   7,
				DateOrdered:  time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
				DateExpected: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
				SupplierID:   2,
				Status:       deliverydomain.StatusPending,
				Items:        []deliverydomain.InventoryOrder{{ProductID: 4, QuantityOrdered: 3}},
			},
		},
		Disposals: []disposaldomain.DisposedInventory{
			{
				DisposalID: 3,
				Date:       time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
				Reason:     "water damage",
				UserID:     "jo",
				Reports:    []disposaldomain.DisposedInventoryReport{{ProductID: 4, QuantityDisposed: 1}},
			},
		},
	})
	require.NoError(t, err)

	page := buf.String()
	assert.Contains(t, page, "Pending deliveries: 1")
	assert.Contains(t, page, "crate of bolts")
	assert.Contains(t, page, "2026-09-02")
	assert.Contains(t, page, "water damage")
}

func TestTemplatesParse(t *testing.T) {
	for _, name := range []string{
		"login.html", "register.html", "home.html", "products.html",
		"suppliers.html", "deliveries.html", "transactions.html",
		"disposals.html", "users.html", "permissions.html",
	} {
		assert.NotNil(t, templates.Lookup(name), "template %s must be defined", name)
	}
}
