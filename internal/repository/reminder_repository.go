package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"billminder/internal/model"
)

// ReminderRepository handles CRUD for reminders.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// InsertMany inserts the batch in one statement. Empty batches are a no-op.
func (r *ReminderRepository) InsertMany(ctx context.Context, reminders []model.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&reminders).Error; err != nil {
		return fmt.Errorf("insert reminders: %w", err)
	}
	return nil
}

func (r *ReminderRepository) FindByBill(ctx context.Context, billID string) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Where("bill_id = ?", billID).
		Order("trigger_date ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepository) CountForBill(ctx context.Context, billID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("bill_id = ?", billID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByBill removes every reminder for the bill, sent or not.
func (r *ReminderRepository) DeleteByBill(ctx context.Context, billID string) error {
	if err := r.db.WithContext(ctx).Where("bill_id = ?", billID).
		Delete(&model.Reminder{}).Error; err != nil {
		return fmt.Errorf("delete reminders for bill: %w", err)
	}
	return nil
}

// FindDueUnsent returns unsent reminders whose trigger date has passed,
// oldest first.
func (r *ReminderRepository) FindDueUnsent(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Where("sent = ? AND trigger_date <= ?", false, now).
		Order("trigger_date ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// FindByUser returns the user's reminders ordered by trigger date. When
// sentFilter is non-nil only reminders with that sent state are returned.
func (r *ReminderRepository) FindByUser(ctx context.Context, userID string, sentFilter *bool) ([]model.Reminder, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if sentFilter != nil {
		q = q.Where("sent = ?", *sentFilter)
	}
	var reminders []model.Reminder
	if err := q.Order("trigger_date ASC").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// FindDueForUser returns the user's unsent reminders already due, oldest
// first.
func (r *ReminderRepository) FindDueForUser(ctx context.Context, userID string, now time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND sent = ? AND trigger_date <= ?", userID, false, now).
		Order("trigger_date ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// MarkSent flips the reminders to sent with the given timestamp.
func (r *ReminderRepository) MarkSent(ctx context.Context, ids []string, sentAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"sent": true, "sent_at": sentAt}).Error; err != nil {
		return fmt.Errorf("mark reminders sent: %w", err)
	}
	return nil
}

// MarkSentForBill marks the bill's unsent reminders sent and returns how
// many were affected. Used when a bill is paid early.
func (r *ReminderRepository) MarkSentForBill(ctx context.Context, billID string, sentAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("bill_id = ? AND sent = ?", billID, false).
		Updates(map[string]interface{}{"sent": true, "sent_at": sentAt})
	if res.Error != nil {
		return 0, fmt.Errorf("mark bill reminders sent: %w", res.Error)
	}
	return res.RowsAffected, nil
}
