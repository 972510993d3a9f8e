package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/avend/stockroom/internal/permission/domain"
)

// GormPermissionRepository implements PermissionRepository using GORM
type GormPermissionRepository struct {
	db *gorm.DB
}

// NewGormPermissionRepository creates a new GORM permission repository
func NewGormPermissionRepository(db *gorm.DB) *GormPermissionRepository {
	return &GormPermissionRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GormPermissionRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.PermissionSet{})
}

// Load returns the single threshold row, creating it with defaults if absent
func (r *GormPermissionRepository) Load() (*domain.PermissionSet, error) {
	var set domain.PermissionSet
	if err := r.db.Where(domain.PermissionSet{ID: 1}).FirstOrCreate(&set).Error; err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}
	return &set, nil
}

// Save persists the threshold row
func (r *GormPermissionRepository) Save(set *domain.PermissionSet) error {
	set.ID = 1
	if err := r.db.Save(set).Error; err != nil {
		return fmt.Errorf("failed to save permissions: %w", err)
	}
	return nil
}
