package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddStock(t *testing.T) {
	item := &InventoryItem{Stock: 3}
	item.AddStock(5)
	assert.Equal(t, 8, item.Stock)
}

func TestRemoveStockFloorsAtZero(t *testing.T) {
	item := &InventoryItem{Stock: 3}

	item.RemoveStock(2)
	assert.Equal(t, 1, item.Stock)

	item.RemoveStock(10)
	assert.Equal(t, 0, item.Stock, "stock must never go negative")

	item.RemoveStock(1)
	assert.Equal(t, 0, item.Stock)
}

func TestNeedsRestock(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		limit int
		want  bool
	}{
		{"below limit", 2, 5, true},
		{"at limit", 5, 5, false},
		{"above limit", 8, 5, false},
		{"zero limit", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &InventoryItem{Stock: tt.stock, RestockLimit: tt.limit}
			assert.Equal(t, tt.want, item.NeedsRestock())
		})
	}
}
