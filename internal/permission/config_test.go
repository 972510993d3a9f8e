package permission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avend/stockroom/internal/permission/domain"
)

func defaultSet() *domain.PermissionSet {
	return &domain.PermissionSet{
		ProductCreate:     5,
		DeliveryCreate:    2,
		DeliveryConfirm:   2,
		DeliveryReject:    5,
		DisposalCreate:    2,
		TransactionCreate: 1,
		SupplierCreate:    5,
	}
}

func TestAllowedThresholds(t *testing.T) {
	config := NewConfig(defaultSet())

	assert.False(t, config.Allowed(domain.ActionProductCreate, 4))
	assert.True(t, config.Allowed(domain.ActionProductCreate, 5))
	assert.True(t, config.Allowed(domain.ActionProductCreate, 10))

	assert.True(t, config.Allowed(domain.ActionTransactionCreate, 1))
	assert.False(t, config.Allowed(domain.ActionTransactionCreate, 0))
}

func TestAllowedUnknownActionDenied(t *testing.T) {
	config := NewConfig(defaultSet())

	// Unknown actions are denied even for the highest levels
	assert.False(t, config.Allowed("Teleport", 100))
}

func TestReloadSwapsThresholds(t *testing.T) {
	config := NewConfig(defaultSet())
	require.True(t, config.Allowed(domain.ActionDeliveryCreate, 2))

	set := defaultSet()
	set.DeliveryCreate = 7
	config.Reload(set)

	assert.False(t, config.Allowed(domain.ActionDeliveryCreate, 2))
	assert.True(t, config.Allowed(domain.ActionDeliveryCreate, 7))
}

func TestSnapshotIsACopy(t *testing.T) {
	config := NewConfig(defaultSet())

	snapshot := config.Snapshot()
	snapshot[domain.ActionProductCreate] = 0

	assert.False(t, config.Allowed(domain.ActionProductCreate, 0),
		"mutating a snapshot must not affect the live config")
}

func TestSeedFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permissions.toml")
	require.NoError(t, os.WriteFile(path, []byte("product_create = 3\ndelivery_reject = 9\n"), 0o644))

	set := defaultSet()
	require.NoError(t, SeedFromFile(path, set))

	assert.Equal(t, 3, set.ProductCreate)
	assert.Equal(t, 9, set.DeliveryReject)
	// Keys absent from the file keep their stored values
	assert.Equal(t, 2, set.DeliveryCreate)
	assert.Equal(t, 1, set.TransactionCreate)
}

func TestSeedFromFileMissing(t *testing.T) {
	err := SeedFromFile(filepath.Join(t.TempDir(), "nope.toml"), defaultSet())
	assert.Error(t, err)
}
