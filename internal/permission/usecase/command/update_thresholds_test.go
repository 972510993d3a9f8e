package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avend/stockroom/internal/permission"
	"github.com/avend/stockroom/internal/permission/domain"
	userdomain "github.com/avend/stockroom/internal/user/domain"
)

// memoryPermissionRepo keeps the single threshold row in memory
type memoryPermissionRepo struct {
	set *domain.PermissionSet
}

func (r *memoryPermissionRepo) Load() (*domain.PermissionSet, error) {
	copied := *r.set
	return &copied, nil
}

func (r *memoryPermissionRepo) Save(set *domain.PermissionSet) error {
	copied := *set
	r.set = &copied
	return nil
}

func newFixture() (*UpdateThresholdsHandler, *memoryPermissionRepo, *permission.Config) {
	repo := &memoryPermissionRepo{set: &domain.PermissionSet{
		ProductCreate:     5,
		DeliveryCreate:    2,
		DeliveryConfirm:   2,
		DeliveryReject:    5,
		DisposalCreate:    2,
		TransactionCreate: 1,
		SupplierCreate:    5,
	}}
	config := permission.NewConfig(repo.set)
	return NewUpdateThresholdsHandler(repo, config), repo, config
}

func TestUpdateThresholdsRequiresAdmin(t *testing.T) {
	handler, repo, _ := newFixture()

	err := handler.Handle(UpdateThresholdsCommand{
		ActorLevel: userdomain.AdminLevel - 1,
		Thresholds: map[string]int{domain.ActionProductCreate: 1},
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 5, repo.set.ProductCreate, "thresholds must be untouched")
}

func TestUpdateThresholdsRejectsNegative(t *testing.T) {
	handler, _, _ := newFixture()

	err := handler.Handle(UpdateThresholdsCommand{
		ActorLevel: userdomain.AdminLevel,
		Thresholds: map[string]int{domain.ActionProductCreate: -1},
	})

	assert.Error(t, err)
}

func TestUpdateThresholdsPersistsAndReloads(t *testing.T) {
	handler, repo, config := newFixture()

	err := handler.Handle(UpdateThresholdsCommand{
		ActorLevel: userdomain.AdminLevel,
		Thresholds: map[string]int{
			domain.ActionProductCreate:  3,
			domain.ActionDeliveryReject: 8,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, repo.set.ProductCreate)
	assert.Equal(t, 8, repo.set.DeliveryReject)
	assert.True(t, config.Allowed(domain.ActionProductCreate, 3))
	assert.False(t, config.Allowed(domain.ActionDeliveryReject, 5))
}

func TestUpdateThresholdsIgnoresUnknownKeys(t *testing.T) {
	handler, repo, config := newFixture()

	err := handler.Handle(UpdateThresholdsCommand{
		ActorLevel: userdomain.AdminLevel,
		Thresholds: map[string]int{"Teleport": 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, repo.set.ProductCreate)
	_, known := config.Threshold("Teleport")
	assert.False(t, known, "unrecognized actions must not be created")
}
