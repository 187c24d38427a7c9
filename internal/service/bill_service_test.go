package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"billminder/internal/model"
	"billminder/internal/repository"
)

type billFixture struct {
	db           *gorm.DB
	billSvc      *BillService
	reminderSvc  *ReminderService
	reminderRepo *repository.ReminderRepository
	user         *model.User
	utility      *model.Utility
}

func newBillFixture(t *testing.T, now time.Time) *billFixture {
	t.Helper()
	db := newTestDB(t)
	reminderRepo := repository.NewReminderRepository(db)
	billRepo := repository.NewBillRepository(db)
	utilityRepo := repository.NewUtilityRepository(db)

	reminderSvc := NewReminderService(reminderRepo, billRepo, utilityRepo)
	reminderSvc.now = fixedNow(now)
	billSvc := NewBillService(billRepo, utilityRepo, reminderSvc, DefaultLeadDays)
	billSvc.now = fixedNow(now)

	user := mustCreateUser(t, db, "bills@example.com")
	return &billFixture{
		db:           db,
		billSvc:      billSvc,
		reminderSvc:  reminderSvc,
		reminderRepo: reminderRepo,
		user:         user,
		utility:      mustCreateUtility(t, db, user.ID, "Gas Co"),
	}
}

func TestCreateBillClassifiesAndReconciles(t *testing.T) {
	f := newBillFixture(t, day(2025, time.June, 15))
	ctx := context.Background()

	bill, err := f.billSvc.Create(ctx, f.user.ID, BillInput{
		UtilityID: f.utility.ID,
		DueDate:   day(2025, time.June, 25),
		Amount:    decimal.NewFromFloat(60),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if bill.Status != model.StatusUpcoming {
		t.Errorf("status = %q, want upcoming", bill.Status)
	}

	reminders, err := f.reminderRepo.FindByBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("FindByBill: %v", err)
	}
	if len(reminders) != 2 {
		t.Errorf("create reconciled %d reminders, want 2", len(reminders))
	}
}

func TestCreateBillRejectsInactiveUtility(t *testing.T) {
	f := newBillFixture(t, day(2025, time.June, 15))
	ctx := context.Background()

	if err := repository.NewUtilityRepository(f.db).SetActive(ctx, f.utility.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	_, err := f.billSvc.Create(ctx, f.user.ID, BillInput{
		UtilityID: f.utility.ID,
		DueDate:   day(2025, time.June, 25),
	})
	if err == nil {
		t.Fatal("expected error creating bill on inactive utility")
	}
}

func TestCreateFromUtilityUsesDefaultDay(t *testing.T) {
	f := newBillFixture(t, day(2025, time.April, 10))
	ctx := context.Background()

	defaultDay := 31 // April has 30 days, clamp expected
	utilityRepo := repository.NewUtilityRepository(f.db)
	utility := &model.Utility{
		UserID:        f.user.ID,
		Provider:      "Internet",
		DefaultDay:    &defaultDay,
		DefaultAmount: decimal.NewFromFloat(49.99),
		Active:        true,
	}
	if err := utilityRepo.Create(ctx, utility); err != nil {
		t.Fatalf("create utility: %v", err)
	}

	bill, err := f.billSvc.CreateFromUtility(ctx, f.user.ID, utility.ID, decimal.Zero, "", time.Time{})
	if err != nil {
		t.Fatalf("CreateFromUtility: %v", err)
	}
	if !bill.DueDate.Equal(day(2025, time.April, 30)) {
		t.Errorf("due date = %v, want April 30 (clamped)", bill.DueDate)
	}
	if !bill.Amount.Equal(decimal.NewFromFloat(49.99)) {
		t.Errorf("amount = %s, want utility default", bill.Amount)
	}
}

func TestUpdateShiftsDueDateAndReminders(t *testing.T) {
	f := newBillFixture(t, day(2025, time.June, 15))
	ctx := context.Background()

	bill, err := f.billSvc.Create(ctx, f.user.ID, BillInput{
		UtilityID: f.utility.ID,
		DueDate:   day(2025, time.June, 25),
		Amount:    decimal.NewFromFloat(60),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := f.billSvc.Update(ctx, f.user.ID, bill.ID, BillUpdate{
		DueDate: day(2025, time.June, 14),
		Amount:  bill.Amount,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != model.StatusOverdue {
		t.Errorf("status = %q, want overdue after moving due date behind now", updated.Status)
	}

	reminders, _ := f.reminderRepo.FindByBill(ctx, bill.ID)
	if len(reminders) != 1 {
		t.Fatalf("reminders after overdue reconcile = %d, want 1 catch-up", len(reminders))
	}
	if reminders[0].Type != model.ReminderBefore || !reminders[0].TriggerDate.Equal(day(2025, time.June, 15)) {
		t.Errorf("catch-up reminder = %+v, want before/today", reminders[0])
	}
}

func TestMarkPaidIsStickyAndSilencesReminders(t *testing.T) {
	f := newBillFixture(t, day(2025, time.June, 15))
	ctx := context.Background()

	bill, err := f.billSvc.Create(ctx, f.user.ID, BillInput{
		UtilityID: f.utility.ID,
		DueDate:   day(2025, time.June, 25),
		Amount:    decimal.NewFromFloat(60),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	paid, err := f.billSvc.MarkPaid(ctx, f.user.ID, bill.ID)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if paid.Status != model.StatusPaid || paid.PaidDate == nil {
		t.Fatalf("paid bill = %+v, want paid status with paid date", paid)
	}

	// Display status stays paid even when the due date is long past.
	if got := DisplayStatus(paid, day(2026, time.January, 1)); got != model.StatusPaid {
		t.Errorf("DisplayStatus after paid = %q, want paid", got)
	}

	reminders, _ := f.reminderRepo.FindByBill(ctx, bill.ID)
	for _, r := range reminders {
		if !r.Sent {
			t.Errorf("reminder %s still unsent after payment", r.ID)
		}
	}
}

func TestDeleteProtectsEarliestBill(t *testing.T) {
	f := newBillFixture(t, day(2025, time.June, 15))
	ctx := context.Background()

	first, err := f.billSvc.Create(ctx, f.user.ID, BillInput{
		UtilityID: f.utility.ID,
		DueDate:   day(2025, time.May, 10),
		Amount:    decimal.NewFromFloat(55),
	})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := f.billSvc.Create(ctx, f.user.ID, BillInput{
		UtilityID: f.utility.ID,
		DueDate:   day(2025, time.June, 25),
		Amount:    decimal.NewFromFloat(60),
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if err := f.billSvc.Delete(ctx, f.user.ID, first.ID); !errors.Is(err, ErrEarliestBill) {
		t.Errorf("deleting earliest bill: err = %v, want ErrEarliestBill", err)
	}
	if err := f.billSvc.Delete(ctx, f.user.ID, second.ID); err != nil {
		t.Errorf("deleting later bill: %v", err)
	}

	// The later bill's reminders go with it.
	reminders, _ := f.reminderRepo.FindByBill(ctx, second.ID)
	if len(reminders) != 0 {
		t.Errorf("reminders survived bill deletion: %d", len(reminders))
	}
}

func TestListForUtilityRecomputesStatus(t *testing.T) {
	f := newBillFixture(t, day(2025, time.June, 15))
	ctx := context.Background()

	overdue, err := f.billSvc.Create(ctx, f.user.ID, BillInput{
		UtilityID: f.utility.ID,
		DueDate:   day(2025, time.June, 10),
		Amount:    decimal.NewFromFloat(30),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Corrupt the cached status; the listing must not trust it.
	overdue.Status = model.StatusUpcoming
	if err := repository.NewBillRepository(f.db).Update(ctx, overdue); err != nil {
		t.Fatalf("Update: %v", err)
	}

	views, err := f.billSvc.ListForUtility(ctx, f.user.ID, f.utility.ID)
	if err != nil {
		t.Fatalf("ListForUtility: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	if views[0].DisplayStatus != model.StatusOverdue {
		t.Errorf("display status = %q, want overdue", views[0].DisplayStatus)
	}
	if views[0].CanDelete {
		t.Error("earliest bill reported as deletable")
	}
}
