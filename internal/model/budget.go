package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget caps spending for a category over a date window. The window is
// inclusive on both ends for transaction linking; StartDate < EndDate.
type Budget struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index"`
	Category    string
	AmountLimit decimal.Decimal `gorm:"type:numeric"`
	StartDate   time.Time
	EndDate     time.Time
	Active      bool `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Contains reports whether the day falls inside the budget window,
// boundaries included.
func (b *Budget) Contains(day time.Time) bool {
	return !day.Before(b.StartDate) && !day.After(b.EndDate)
}
