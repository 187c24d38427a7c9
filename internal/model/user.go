package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns utilities, bills, budgets and transactions.
type User struct {
	ID         string `gorm:"primaryKey"`
	Email      string `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	TelegramID int64 `gorm:"index"` // chat id for reminder delivery, 0 when unlinked
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
