package permission

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/avend/stockroom/internal/permission/domain"
)

// Config holds the loaded action thresholds. It is created once at startup and
// passed explicitly to the usecases that need it; updates go through the admin
// update command, never through ambient package state.
type Config struct {
	mu         sync.RWMutex
	thresholds map[string]int
}

// NewConfig creates a Config from a loaded permission set
func NewConfig(set *domain.PermissionSet) *Config {
	return &Config{thresholds: set.Thresholds()}
}

// Allowed reports whether the given account level meets the threshold for the
// action. Unknown actions are always denied.
func (c *Config) Allowed(action string, accountLevel int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	threshold, ok := c.thresholds[action]
	if !ok {
		return false
	}
	return accountLevel >= threshold
}

// Threshold returns the minimum level for an action and whether it is known
func (c *Config) Threshold(action string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	threshold, ok := c.thresholds[action]
	return threshold, ok
}

// Snapshot returns a copy of the current thresholds
func (c *Config) Snapshot() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int, len(c.thresholds))
	for action, level := range c.thresholds {
		out[action] = level
	}
	return out
}

// Reload replaces the in-memory thresholds from a persisted set. Reloading the
// same row twice is a no-op.
func (c *Config) Reload(set *domain.PermissionSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thresholds = set.Thresholds()
}

// seedFile mirrors the persisted row layout for TOML seeding
type seedFile struct {
	ProductCreate     *int `toml:"product_create"`
	DeliveryCreate    *int `toml:"delivery_create"`
	DeliveryConfirm   *int `toml:"delivery_confirm"`
	DeliveryReject    *int `toml:"delivery_reject"`
	DisposalCreate    *int `toml:"disposal_create"`
	TransactionCreate *int `toml:"transaction_create"`
	SupplierCreate    *int `toml:"supplier_create"`
}

// SeedFromFile overlays thresholds from a TOML file onto a permission set.
// Keys absent from the file keep their current values.
func SeedFromFile(path string, set *domain.PermissionSet) error {
	var seed seedFile
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return fmt.Errorf("failed to read permission seed file: %w", err)
	}

	overlay := make(map[string]int)
	put := func(action string, v *int) {
		if v != nil {
			overlay[action] = *v
		}
	}
	put(domain.ActionProductCreate, seed.ProductCreate)
	put(domain.ActionDeliveryCreate, seed.DeliveryCreate)
	put(domain.ActionDeliveryConfirm, seed.DeliveryConfirm)
	put(domain.ActionDeliveryReject, seed.DeliveryReject)
	put(domain.ActionDisposalCreate, seed.DisposalCreate)
	put(domain.ActionTransactionCreate, seed.TransactionCreate)
	put(domain.ActionSupplierCreate, seed.SupplierCreate)

	set.Apply(overlay)
	return nil
}
