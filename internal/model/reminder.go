package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderType distinguishes the reminder variants a plan can emit.
type ReminderType string

const (
	// ReminderBefore fires ahead of the due date (or immediately for an
	// already-overdue bill).
	ReminderBefore ReminderType = "before"
	// ReminderOn fires on the due date itself.
	ReminderOn ReminderType = "on"
	// ReminderUpcoming is emitted when the lead window already overlaps
	// "now"; its trigger date is in the past so it fires on the next sweep.
	ReminderUpcoming ReminderType = "upcoming"
)

// Reminder is a scheduled notification for a bill. TriggerDate is
// normalized to midnight. For one bill no two reminders share the same
// (Type, TriggerDate) pair. Once Sent it is terminal: never re-sent and
// never edited, only superseded by reconciliation (delete + recreate).
type Reminder struct {
	ID          string       `gorm:"primaryKey"`
	UserID      string       `gorm:"index"`
	BillID      string       `gorm:"index:idx_bill_type_trigger,unique"`
	Type        ReminderType `gorm:"index:idx_bill_type_trigger,unique"`
	TriggerDate time.Time    `gorm:"index:idx_bill_type_trigger,unique"`
	Sent        bool         `gorm:"default:false;index"`
	SentAt      *time.Time
	CreatedAt   time.Time
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
