package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"billminder/internal/model"
)

// UtilityRepository handles CRUD for utilities.
type UtilityRepository struct {
	db *gorm.DB
}

func NewUtilityRepository(db *gorm.DB) *UtilityRepository {
	return &UtilityRepository{db: db}
}

func (r *UtilityRepository) Create(ctx context.Context, utility *model.Utility) error {
	if err := r.db.WithContext(ctx).Create(utility).Error; err != nil {
		return fmt.Errorf("create utility: %w", err)
	}
	return nil
}

func (r *UtilityRepository) FindByID(ctx context.Context, utilityID string) (*model.Utility, error) {
	var utility model.Utility
	if err := r.db.WithContext(ctx).Where("id = ?", utilityID).First(&utility).Error; err != nil {
		return nil, err
	}
	return &utility, nil
}

func (r *UtilityRepository) ListForUser(ctx context.Context, userID string) ([]model.Utility, error) {
	var utilities []model.Utility
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("provider ASC").
		Find(&utilities).Error; err != nil {
		return nil, err
	}
	return utilities, nil
}

func (r *UtilityRepository) Update(ctx context.Context, utility *model.Utility) error {
	if err := r.db.WithContext(ctx).Save(utility).Error; err != nil {
		return fmt.Errorf("update utility: %w", err)
	}
	return nil
}

// SetActive toggles a utility without touching the rest of the record.
func (r *UtilityRepository) SetActive(ctx context.Context, utilityID string, active bool) error {
	if err := r.db.WithContext(ctx).Model(&model.Utility{}).
		Where("id = ?", utilityID).
		Update("active", active).Error; err != nil {
		return fmt.Errorf("set utility active: %w", err)
	}
	return nil
}
