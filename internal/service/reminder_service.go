package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"billminder/internal/dateutil"
	"billminder/internal/model"
	"billminder/internal/repository"
)

const unknownUtilityName = "Unknown Utility"

// ReminderService reconciles each bill's stored reminders against the
// plan derived from its due date.
type ReminderService struct {
	reminderRepo *repository.ReminderRepository
	billRepo     *repository.BillRepository
	utilityRepo  *repository.UtilityRepository
	now          func() time.Time
}

func NewReminderService(reminderRepo *repository.ReminderRepository, billRepo *repository.BillRepository, utilityRepo *repository.UtilityRepository) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		billRepo:     billRepo,
		utilityRepo:  utilityRepo,
		now:          time.Now,
	}
}

// ReconcileForBill replaces the bill's stored reminders with the current
// plan: delete everything for the bill, sent or not, then insert one
// unsent reminder per planned spec. Full replace keeps the (type, trigger
// date) uniqueness invariant trivially; a due-date edit supersedes the old
// schedule entirely. If the insert fails after the delete the bill is left
// with zero reminders, and the next SyncForUser pass recreates them.
func (s *ReminderService) ReconcileForBill(ctx context.Context, userID string, bill *model.Bill, leadDays int) ([]model.Reminder, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if bill == nil || bill.ID == "" {
		return nil, errors.New("bill is required")
	}

	specs, err := PlanReminders(bill.DueDate, s.now(), leadDays)
	if err != nil {
		return nil, err
	}

	if err := s.reminderRepo.DeleteByBill(ctx, bill.ID); err != nil {
		return nil, err
	}

	reminders := make([]model.Reminder, 0, len(specs))
	for _, spec := range specs {
		reminders = append(reminders, model.Reminder{
			UserID:      userID,
			BillID:      bill.ID,
			Type:        spec.Type,
			TriggerDate: spec.TriggerDate,
			Sent:        false,
		})
	}
	if err := s.reminderRepo.InsertMany(ctx, reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

// SyncForUser tops up reminders for every bill of the user that has none.
// Bills that already carry reminders are left untouched so partially
// acknowledged sets are not nuked on every listing. One bill failing never
// aborts the rest; errors are logged and the loop continues.
func (s *ReminderService) SyncForUser(ctx context.Context, userID string, leadDays int) error {
	if userID == "" {
		return errors.New("user id is required")
	}

	bills, err := s.billRepo.ListForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list bills for sync: %w", err)
	}

	for i := range bills {
		bill := &bills[i]
		count, err := s.reminderRepo.CountForBill(ctx, bill.ID)
		if err != nil {
			slog.Error("sync: count reminders failed", "bill_id", bill.ID, "error", err)
			continue
		}
		if count > 0 {
			continue
		}
		if _, err := s.ReconcileForBill(ctx, userID, bill, leadDays); err != nil {
			slog.Error("sync: reconcile failed", "bill_id", bill.ID, "error", err)
			continue
		}
	}
	return nil
}

// CreateManual stores a single user-requested reminder for a bill. A zero
// trigger date means today. The trigger date is normalized to midnight.
func (s *ReminderService) CreateManual(ctx context.Context, userID, billID string, triggerDate time.Time, rtype model.ReminderType) (*model.Reminder, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if billID == "" {
		return nil, errors.New("bill id is required")
	}
	if rtype == "" {
		rtype = model.ReminderBefore
	}
	if triggerDate.IsZero() {
		triggerDate = s.now()
	}

	reminder := &model.Reminder{
		UserID:      userID,
		BillID:      billID,
		Type:        rtype,
		TriggerDate: dateutil.Midnight(triggerDate),
		Sent:        false,
	}
	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// ReminderDetails is a reminder hydrated with bill and utility context for
// user-facing listings.
type ReminderDetails struct {
	model.Reminder
	UtilityName string
	DueDate     time.Time
	Amount      string
}

// DueForUser syncs the user's reminders, then returns the due and unsent
// ones with bill and utility details attached. A reminder whose bill is
// gone is skipped; a missing utility only degrades the display name.
func (s *ReminderService) DueForUser(ctx context.Context, userID string, leadDays int) ([]ReminderDetails, error) {
	if err := s.SyncForUser(ctx, userID, leadDays); err != nil {
		return nil, err
	}

	reminders, err := s.reminderRepo.FindDueForUser(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, reminders), nil
}

// ListForUser returns all of the user's reminders with details, optionally
// filtered by sent state.
func (s *ReminderService) ListForUser(ctx context.Context, userID string, sentFilter *bool) ([]ReminderDetails, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	reminders, err := s.reminderRepo.FindByUser(ctx, userID, sentFilter)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, reminders), nil
}

func (s *ReminderService) hydrate(ctx context.Context, reminders []model.Reminder) []ReminderDetails {
	details := make([]ReminderDetails, 0, len(reminders))
	for _, r := range reminders {
		bill, err := s.billRepo.FindByID(ctx, r.BillID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				slog.Warn("hydrate: bill lookup failed", "reminder_id", r.ID, "bill_id", r.BillID, "error", err)
			}
			continue
		}

		name := unknownUtilityName
		if utility, err := s.utilityRepo.FindByID(ctx, bill.UtilityID); err == nil {
			name = utility.Provider
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("hydrate: utility lookup failed", "bill_id", bill.ID, "utility_id", bill.UtilityID, "error", err)
		}

		details = append(details, ReminderDetails{
			Reminder:    r,
			UtilityName: name,
			DueDate:     bill.DueDate,
			Amount:      bill.Amount.StringFixed(2),
		})
	}
	return details
}

// Acknowledge marks the given reminders sent on behalf of the user (an
// explicit in-app acknowledgment rather than a delivery).
func (s *ReminderService) Acknowledge(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return errors.New("reminder ids are required")
	}
	return s.reminderRepo.MarkSent(ctx, ids, s.now())
}

// DeleteForBill removes every stored reminder of a bill, used when the
// bill itself is removed.
func (s *ReminderService) DeleteForBill(ctx context.Context, billID string) error {
	if billID == "" {
		return errors.New("bill id is required")
	}
	return s.reminderRepo.DeleteByBill(ctx, billID)
}

// MarkSentForBill silences the bill's remaining unsent reminders, used
// when the bill is paid ahead of its schedule.
func (s *ReminderService) MarkSentForBill(ctx context.Context, billID string) (int64, error) {
	if billID == "" {
		return 0, errors.New("bill id is required")
	}
	return s.reminderRepo.MarkSentForBill(ctx, billID, s.now())
}
