package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"billminder/internal/dateutil"
	"billminder/internal/model"
	"billminder/internal/repository"
)

// ErrEarliestBill is returned when deleting the initial bill of a
// utility; every utility keeps at least its oldest bill as history.
var ErrEarliestBill = errors.New("cannot delete the initial bill for this utility")

// BillService manages bill lifecycle and keeps reminders reconciled with
// due-date changes.
type BillService struct {
	billRepo    *repository.BillRepository
	utilityRepo *repository.UtilityRepository
	reminderSvc *ReminderService
	leadDays    int
	now         func() time.Time
}

func NewBillService(billRepo *repository.BillRepository, utilityRepo *repository.UtilityRepository, reminderSvc *ReminderService, leadDays int) *BillService {
	return &BillService{
		billRepo:    billRepo,
		utilityRepo: utilityRepo,
		reminderSvc: reminderSvc,
		leadDays:    leadDays,
		now:         time.Now,
	}
}

// BillInput carries the fields to create a bill.
type BillInput struct {
	UtilityID string
	DueDate   time.Time
	Amount    decimal.Decimal
	Notes     string
}

// Create stores a new bill for an active utility and reconciles its
// reminders. The bill write is not rolled back if reconciliation fails;
// the failure is logged and the next sync self-heals the reminder set.
func (s *BillService) Create(ctx context.Context, userID string, in BillInput) (*model.Bill, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if in.UtilityID == "" {
		return nil, errors.New("utility id is required")
	}
	if in.DueDate.IsZero() {
		return nil, errors.New("due date is required")
	}

	utility, err := s.utilityRepo.FindByID(ctx, in.UtilityID)
	if err != nil {
		return nil, fmt.Errorf("load utility: %w", err)
	}
	if !utility.Active {
		return nil, errors.New("cannot add a bill to an inactive utility")
	}

	now := s.now()
	bill := &model.Bill{
		UserID:    userID,
		UtilityID: in.UtilityID,
		DueDate:   dateutil.Midnight(in.DueDate),
		Amount:    in.Amount,
		Status:    ClassifyStatus(in.DueDate, nil, now),
		Notes:     in.Notes,
	}
	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, err
	}

	if _, err := s.reminderSvc.ReconcileForBill(ctx, userID, bill, s.leadDays); err != nil {
		slog.Error("reconcile after bill create failed", "bill_id", bill.ID, "error", err)
	}
	return bill, nil
}

// CreateFromUtility builds a bill from the utility's default schedule. A
// zero due date falls back to the utility's default day in the current
// month, clamped to the month's length.
func (s *BillService) CreateFromUtility(ctx context.Context, userID, utilityID string, amount decimal.Decimal, notes string, dueDate time.Time) (*model.Bill, error) {
	utility, err := s.utilityRepo.FindByID(ctx, utilityID)
	if err != nil {
		return nil, fmt.Errorf("load utility: %w", err)
	}
	if !utility.Active {
		return nil, errors.New("cannot add a bill to an inactive utility")
	}

	if dueDate.IsZero() {
		if utility.DefaultDay == nil {
			return nil, errors.New("utility has no default day")
		}
		now := s.now()
		day := dateutil.ClampDayOfMonth(now, *utility.DefaultDay)
		dueDate = time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
	}
	if amount.IsZero() {
		amount = utility.DefaultAmount
	}

	return s.Create(ctx, userID, BillInput{
		UtilityID: utilityID,
		DueDate:   dueDate,
		Amount:    amount,
		Notes:     notes,
	})
}

// BillUpdate carries the editable fields of a bill. Nil PaidDate leaves
// the bill unpaid; setting it marks the bill paid.
type BillUpdate struct {
	DueDate  time.Time
	Amount   decimal.Decimal
	PaidDate *time.Time
	Notes    string
}

// Update edits a bill, recomputes its status and reconciles reminders for
// the (possibly shifted) due date. Reconciliation failure is logged, not
// fatal: the bill update stands and the next sync repairs the reminders.
func (s *BillService) Update(ctx context.Context, userID, billID string, up BillUpdate) (*model.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.UserID != userID {
		return nil, errors.New("not authorized to update this bill")
	}
	if up.DueDate.IsZero() {
		return nil, errors.New("due date is required")
	}

	bill.DueDate = dateutil.Midnight(up.DueDate)
	bill.Amount = up.Amount
	bill.Notes = up.Notes
	bill.PaidDate = up.PaidDate
	bill.Status = ClassifyStatus(bill.DueDate, bill.PaidDate, s.now())

	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, err
	}

	if _, err := s.reminderSvc.ReconcileForBill(ctx, userID, bill, s.leadDays); err != nil {
		slog.Error("reconcile after bill update failed", "bill_id", bill.ID, "error", err)
	}
	return bill, nil
}

// MarkPaid settles the bill now and silences its remaining reminders.
// Paid is sticky: later date arithmetic never reverts it.
func (s *BillService) MarkPaid(ctx context.Context, userID, billID string) (*model.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.UserID != userID {
		return nil, errors.New("not authorized to update this bill")
	}

	now := s.now()
	bill.Status = model.StatusPaid
	bill.PaidDate = &now
	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, err
	}

	if _, err := s.reminderSvc.MarkSentForBill(ctx, billID); err != nil {
		slog.Error("mark reminders sent after payment failed", "bill_id", billID, "error", err)
	}
	return bill, nil
}

// Delete removes a bill and its reminders. The utility's earliest bill is
// protected so each utility always retains at least one historical bill.
func (s *BillService) Delete(ctx context.Context, userID, billID string) error {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return err
	}
	if bill.UserID != userID {
		return errors.New("not authorized to delete this bill")
	}

	earliest, err := s.billRepo.EarliestForUtility(ctx, bill.UtilityID)
	if err != nil {
		return fmt.Errorf("find earliest bill: %w", err)
	}
	if earliest.ID == bill.ID {
		return ErrEarliestBill
	}

	if err := s.billRepo.Delete(ctx, userID, billID); err != nil {
		return err
	}
	if err := s.reminderSvc.DeleteForBill(ctx, billID); err != nil {
		slog.Error("delete reminders for removed bill failed", "bill_id", billID, "error", err)
	}
	return nil
}

// BillView is a bill prepared for display: status recomputed from today's
// date and deletability resolved against the utility's earliest bill.
type BillView struct {
	model.Bill
	DisplayStatus model.BillStatus
	CanDelete     bool
}

// ListForUtility returns the utility's bills with display status
// recomputed on read.
func (s *BillService) ListForUtility(ctx context.Context, userID, utilityID string) ([]BillView, error) {
	bills, err := s.billRepo.ListForUtility(ctx, userID, utilityID)
	if err != nil {
		return nil, err
	}

	earliestID := ""
	if earliest, err := s.billRepo.EarliestForUtility(ctx, utilityID); err == nil {
		earliestID = earliest.ID
	}

	now := s.now()
	views := make([]BillView, 0, len(bills))
	for _, b := range bills {
		views = append(views, BillView{
			Bill:          b,
			DisplayStatus: DisplayStatus(&b, now),
			CanDelete:     b.ID != earliestID,
		})
	}
	return views, nil
}

// ListForUser returns all of the user's bills with recomputed status.
func (s *BillService) ListForUser(ctx context.Context, userID string) ([]BillView, error) {
	bills, err := s.billRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]BillView, 0, len(bills))
	for _, b := range bills {
		views = append(views, BillView{
			Bill:          b,
			DisplayStatus: DisplayStatus(&b, now),
			CanDelete:     true,
		})
	}
	return views, nil
}

// History returns the user's past bills joined with utility details,
// filtered by optional date window, status and search term.
func (s *BillService) History(ctx context.Context, userID string, filter repository.HistoryFilter) ([]repository.BillWithUtility, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	return s.billRepo.History(ctx, userID, filter)
}
