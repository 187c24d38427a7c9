package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"billminder/internal/dateutil"
	"billminder/internal/model"
	"billminder/internal/repository"
)

// BudgetCategories is the fixed set of categories budgets can cap and
// transactions can auto-link against. Matching is case-insensitive.
var BudgetCategories = []string{"Food", "Housing", "Travel", "Utilities", "Entertainment", "Other"}

// CategoryAllowed reports whether the category participates in budgeting.
func CategoryAllowed(category string) bool {
	for _, c := range BudgetCategories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// BudgetService manages budgets and the transaction auto-link.
type BudgetService struct {
	budgetRepo *repository.BudgetRepository
	txnRepo    *repository.TransactionRepository
}

func NewBudgetService(budgetRepo *repository.BudgetRepository, txnRepo *repository.TransactionRepository) *BudgetService {
	return &BudgetService{budgetRepo: budgetRepo, txnRepo: txnRepo}
}

// BudgetInput carries the fields to create a budget.
type BudgetInput struct {
	Category    string
	AmountLimit decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
}

func (s *BudgetService) Create(ctx context.Context, userID string, in BudgetInput) (*model.Budget, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	category := strings.TrimSpace(in.Category)
	if len(category) < 2 {
		return nil, errors.New("category must be at least 2 characters")
	}
	if in.AmountLimit.IsNegative() {
		return nil, errors.New("amount limit must be non-negative")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, errors.New("start and end dates are required")
	}
	start := dateutil.Midnight(in.StartDate)
	end := dateutil.Midnight(in.EndDate)
	if !start.Before(end) {
		return nil, errors.New("end date must be after the start date")
	}

	budget := &model.Budget{
		UserID:      userID,
		Category:    category,
		AmountLimit: in.AmountLimit,
		StartDate:   start,
		EndDate:     end,
		Active:      true,
	}
	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *BudgetService) ListForUser(ctx context.Context, userID string) ([]model.Budget, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	return s.budgetRepo.ListForUser(ctx, userID)
}

// ToggleActive flips a budget's active flag after an ownership check.
func (s *BudgetService) ToggleActive(ctx context.Context, userID, budgetID string) (*model.Budget, error) {
	budget, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.UserID != userID {
		return nil, errors.New("not authorized to update this budget")
	}
	if err := s.budgetRepo.SetActive(ctx, budgetID, !budget.Active); err != nil {
		return nil, err
	}
	budget.Active = !budget.Active
	return budget, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, budgetID string) error {
	return s.budgetRepo.Delete(ctx, userID, budgetID)
}

// LinkBudget selects the budget a transaction should attach to: same user,
// active, category equal case-insensitively and inside the allow-list, and
// the transaction date inside the inclusive budget window. When several
// windows overlap the first budget returned by the store wins. Storage
// errors degrade to "no link" with a warning; they never block the
// transaction write. A nil result means the link must be cleared.
func (s *BudgetService) LinkBudget(ctx context.Context, userID, category string, date time.Time) *string {
	if !CategoryAllowed(category) {
		return nil
	}

	budgets, err := s.budgetRepo.FindActiveForUserCategoryWindow(ctx, userID, category, dateutil.Midnight(date))
	if err != nil {
		slog.Warn("budget link lookup failed", "user_id", userID, "category", category, "error", err)
		return nil
	}
	if len(budgets) == 0 {
		return nil
	}
	id := budgets[0].ID
	return &id
}

// BudgetSummary reports spend against a budget's limit.
type BudgetSummary struct {
	Budget          model.Budget
	AmountUsed      decimal.Decimal
	AmountRemaining decimal.Decimal
	PercentageUsed  float64
}

// Summarize totals the user's expense transactions inside the budget
// window and category. PercentageUsed is capped at 100 for display.
func (s *BudgetService) Summarize(ctx context.Context, budget model.Budget) (BudgetSummary, error) {
	used, err := s.txnRepo.SumExpenses(ctx, budget.UserID, budget.Category, budget.StartDate, budget.EndDate)
	if err != nil {
		return BudgetSummary{}, fmt.Errorf("summarize budget %s: %w", budget.ID, err)
	}

	summary := BudgetSummary{
		Budget:          budget,
		AmountUsed:      used,
		AmountRemaining: budget.AmountLimit.Sub(used),
	}
	if budget.AmountLimit.IsPositive() {
		pct, _ := used.Div(budget.AmountLimit).Mul(decimal.NewFromInt(100)).Float64()
		if pct > 100 {
			pct = 100
		}
		summary.PercentageUsed = pct
	}
	return summary, nil
}
