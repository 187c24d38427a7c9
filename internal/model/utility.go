package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Utility is a recurring service provider (electricity, water, internet)
// whose bills are tracked. DefaultDay is the day of month a new bill is
// auto-generated for; nil disables auto-generation.
type Utility struct {
	ID            string `gorm:"primaryKey"`
	UserID        string `gorm:"index"`
	Provider      string
	AccountNumber string
	DefaultDay    *int
	DefaultAmount decimal.Decimal `gorm:"type:numeric"`
	Active        bool            `gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Bills         []Bill `gorm:"foreignKey:UtilityID"`
}

func (u *Utility) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
