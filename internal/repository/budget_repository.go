package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"billminder/internal/model"
)

// BudgetRepository handles CRUD for budgets.
type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	if err := r.db.WithContext(ctx).Create(budget).Error; err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (r *BudgetRepository) FindByID(ctx context.Context, budgetID string) (*model.Budget, error) {
	var budget model.Budget
	if err := r.db.WithContext(ctx).Where("id = ?", budgetID).First(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *BudgetRepository) ListForUser(ctx context.Context, userID string) ([]model.Budget, error) {
	var budgets []model.Budget
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// FindActiveForUserCategoryWindow returns the user's active budgets whose
// category matches case-insensitively and whose inclusive [start, end]
// window contains the given day. Ordered by creation so overlapping
// windows resolve deterministically (first created wins).
func (r *BudgetRepository) FindActiveForUserCategoryWindow(ctx context.Context, userID, category string, day time.Time) ([]model.Budget, error) {
	var budgets []model.Budget
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ? AND LOWER(category) = LOWER(?)", userID, true, category).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// SetActive flips only the active flag.
func (r *BudgetRepository) SetActive(ctx context.Context, budgetID string, active bool) error {
	if err := r.db.WithContext(ctx).Model(&model.Budget{}).
		Where("id = ?", budgetID).
		Update("active", active).Error; err != nil {
		return fmt.Errorf("set budget active: %w", err)
	}
	return nil
}

// Delete removes the budget. Transactions keep their orphaned BudgetID;
// the link is a weak reference, not ownership.
func (r *BudgetRepository) Delete(ctx context.Context, userID, budgetID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, budgetID).
		Delete(&model.Budget{}).Error; err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}
