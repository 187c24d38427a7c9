package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType marks money direction.
type TransactionType string

const (
	TypeIncome  TransactionType = "Income"
	TypeExpense TransactionType = "Expense"
)

// Transaction is a single ledger entry. BudgetID is a weak back-reference
// to the budget it was auto-linked to: deleting the budget orphans it, and
// it is recomputed whenever the category or date changes.
type Transaction struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	Title     string
	Amount    decimal.Decimal `gorm:"type:numeric"`
	Category  string
	Type      TransactionType
	Date      time.Time
	Notes     string
	BudgetID  *string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
