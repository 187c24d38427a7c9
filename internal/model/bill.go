package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillStatus is the lifecycle state of a bill relative to its due date.
type BillStatus string

const (
	StatusUpcoming BillStatus = "upcoming"
	StatusDue      BillStatus = "due"
	StatusOverdue  BillStatus = "overdue"
	StatusPaid     BillStatus = "paid"
)

// Bill is a single dated amount owed for a utility. The persisted Status is
// a cache of the date-derived state; only "paid" is authoritative and it is
// never reverted by date arithmetic. PaidDate is set iff Status is paid.
type Bill struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	UtilityID string `gorm:"index"`
	DueDate   time.Time
	Amount    decimal.Decimal `gorm:"type:numeric"`
	Status    BillStatus
	PaidDate  *time.Time
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Paid reports whether the bill has been settled.
func (b *Bill) Paid() bool {
	return b.PaidDate != nil
}
