package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"billminder/internal/model"
	"billminder/internal/repository"
)

func newBudgetFixture(t *testing.T) (*gorm.DB, *BudgetService, *model.User) {
	t.Helper()
	db := newTestDB(t)
	svc := NewBudgetService(repository.NewBudgetRepository(db), repository.NewTransactionRepository(db))
	user := mustCreateUser(t, db, "budget@example.com")
	return db, svc, user
}

func mustCreateBudget(t *testing.T, svc *BudgetService, userID, category string, start, end time.Time) *model.Budget {
	t.Helper()
	budget, err := svc.Create(context.Background(), userID, BudgetInput{
		Category:    category,
		AmountLimit: decimal.NewFromInt(500),
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	return budget
}

func TestCreateBudgetValidation(t *testing.T) {
	_, svc, user := newBudgetFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   BudgetInput
	}{
		{"short category", BudgetInput{Category: "F", AmountLimit: decimal.NewFromInt(10), StartDate: day(2025, time.June, 1), EndDate: day(2025, time.June, 30)}},
		{"negative limit", BudgetInput{Category: "Food", AmountLimit: decimal.NewFromInt(-1), StartDate: day(2025, time.June, 1), EndDate: day(2025, time.June, 30)}},
		{"end before start", BudgetInput{Category: "Food", AmountLimit: decimal.NewFromInt(10), StartDate: day(2025, time.June, 30), EndDate: day(2025, time.June, 1)}},
		{"end equals start", BudgetInput{Category: "Food", AmountLimit: decimal.NewFromInt(10), StartDate: day(2025, time.June, 1), EndDate: day(2025, time.June, 1)}},
		{"missing dates", BudgetInput{Category: "Food", AmountLimit: decimal.NewFromInt(10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, user.ID, tt.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLinkBudget(t *testing.T) {
	_, svc, user := newBudgetFixture(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, svc, user.ID, "Food", day(2025, time.June, 1), day(2025, time.June, 30))

	tests := []struct {
		name     string
		category string
		date     time.Time
		want     *string
	}{
		{"inside window case-insensitive", "food", day(2025, time.June, 15), &budget.ID},
		{"start boundary inclusive", "Food", day(2025, time.June, 1), &budget.ID},
		{"end boundary inclusive", "FOOD", day(2025, time.June, 30), &budget.ID},
		{"one day before start", "Food", day(2025, time.May, 31), nil},
		{"one day after end", "food", day(2025, time.July, 1), nil},
		{"category outside allow-list", "Groceries", day(2025, time.June, 15), nil},
		{"different allowed category", "Travel", day(2025, time.June, 15), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.LinkBudget(ctx, user.ID, tt.category, tt.date)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("LinkBudget = %q, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("LinkBudget = nil, want %q", *tt.want)
			case tt.want != nil && got != nil && *got != *tt.want:
				t.Errorf("LinkBudget = %q, want %q", *got, *tt.want)
			}
		})
	}
}

func TestLinkBudgetIgnoresInactiveAndForeign(t *testing.T) {
	db, svc, user := newBudgetFixture(t)
	ctx := context.Background()

	budget := mustCreateBudget(t, svc, user.ID, "Food", day(2025, time.June, 1), day(2025, time.June, 30))
	if _, err := svc.ToggleActive(ctx, user.ID, budget.ID); err != nil {
		t.Fatalf("ToggleActive: %v", err)
	}
	if got := svc.LinkBudget(ctx, user.ID, "Food", day(2025, time.June, 15)); got != nil {
		t.Errorf("inactive budget linked: %q", *got)
	}

	other := mustCreateUser(t, db, "other@example.com")
	mustCreateBudget(t, svc, other.ID, "Food", day(2025, time.June, 1), day(2025, time.June, 30))
	if got := svc.LinkBudget(ctx, user.ID, "Food", day(2025, time.June, 15)); got != nil {
		t.Errorf("another user's budget linked: %q", *got)
	}
}

func TestLinkBudgetOverlapFirstCreatedWins(t *testing.T) {
	_, svc, user := newBudgetFixture(t)
	ctx := context.Background()

	first := mustCreateBudget(t, svc, user.ID, "Food", day(2025, time.June, 1), day(2025, time.June, 30))
	mustCreateBudget(t, svc, user.ID, "Food", day(2025, time.June, 10), day(2025, time.July, 10))

	got := svc.LinkBudget(ctx, user.ID, "Food", day(2025, time.June, 15))
	if got == nil || *got != first.ID {
		t.Errorf("overlap resolution picked %v, want first created %q", got, first.ID)
	}
}

func TestSummarize(t *testing.T) {
	db, svc, user := newBudgetFixture(t)
	ctx := context.Background()
	txnRepo := repository.NewTransactionRepository(db)

	budget := mustCreateBudget(t, svc, user.ID, "Food", day(2025, time.June, 1), day(2025, time.June, 30))

	add := func(amount float64, ttype model.TransactionType, date time.Time, category string) {
		t.Helper()
		err := txnRepo.Create(ctx, &model.Transaction{
			UserID:   user.ID,
			Title:    "t",
			Amount:   decimal.NewFromFloat(amount),
			Category: category,
			Type:     ttype,
			Date:     date,
		})
		if err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}
	add(120, model.TypeExpense, day(2025, time.June, 5), "Food")
	add(80, model.TypeExpense, day(2025, time.June, 20), "food") // case-insensitive
	add(50, model.TypeIncome, day(2025, time.June, 10), "Food")  // income ignored
	add(40, model.TypeExpense, day(2025, time.July, 2), "Food")  // outside window

	summary, err := svc.Summarize(ctx, *budget)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !summary.AmountUsed.Equal(decimal.NewFromInt(200)) {
		t.Errorf("AmountUsed = %s, want 200", summary.AmountUsed)
	}
	if !summary.AmountRemaining.Equal(decimal.NewFromInt(300)) {
		t.Errorf("AmountRemaining = %s, want 300", summary.AmountRemaining)
	}
	if summary.PercentageUsed != 40 {
		t.Errorf("PercentageUsed = %v, want 40", summary.PercentageUsed)
	}
}
