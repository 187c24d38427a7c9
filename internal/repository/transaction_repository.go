package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"billminder/internal/model"
)

// TransactionRepository handles CRUD for transactions.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, userID, txnID string) (*model.Transaction, error) {
	var txn model.Transaction
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, txnID).
		First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) ListForUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	var txns []model.Transaction
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *TransactionRepository) Update(ctx context.Context, txn *model.Transaction) error {
	if err := r.db.WithContext(ctx).Save(txn).Error; err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, txnID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, txnID).
		Delete(&model.Transaction{})
	if res.Error != nil {
		return fmt.Errorf("delete transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SumExpenses totals the user's expense transactions for a category inside
// the inclusive [start, end] window. Category is matched case-insensitively;
// empty category means all categories.
func (r *TransactionRepository) SumExpenses(ctx context.Context, userID, category string, start, end time.Time) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("user_id = ? AND type = ?", userID, model.TypeExpense).
		Where("date >= ? AND date <= ?", start, end)
	if category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", category)
	}

	var result struct {
		Total decimal.NullDecimal
	}
	if err := q.Select("SUM(amount) AS total").Scan(&result).Error; err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	if !result.Total.Valid {
		return decimal.Zero, nil
	}
	return result.Total.Decimal, nil
}
