package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-screener/internal/models"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]models.RoleProfile, error)
	Upsert(ctx context.Context, profile *models.RoleProfile) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// FindAll implements RoleRepository.
func (r *roleRepository) FindAll(ctx context.Context) ([]models.RoleProfile, error) {
	var profiles []models.RoleProfile
	if err := r.db.WithContext(ctx).Order("role_id ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list role profiles: %w", err)
	}
	return profiles, nil
}

// Upsert implements RoleRepository.
func (r *roleRepository) Upsert(ctx context.Context, profile *models.RoleProfile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}},
			UpdateAll: true,
		}).
		Create(profile).Error
	if err != nil {
		return fmt.Errorf("failed to upsert role %s: %w", profile.RoleID, err)
	}
	return nil
}
