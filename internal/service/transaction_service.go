package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"billminder/internal/dateutil"
	"billminder/internal/model"
	"billminder/internal/repository"
)

// TransactionService manages ledger entries and keeps their budget link
// in step with category and date changes.
type TransactionService struct {
	txnRepo   *repository.TransactionRepository
	budgetSvc *BudgetService
}

func NewTransactionService(txnRepo *repository.TransactionRepository, budgetSvc *BudgetService) *TransactionService {
	return &TransactionService{txnRepo: txnRepo, budgetSvc: budgetSvc}
}

// TransactionInput carries the user-editable fields of a transaction.
type TransactionInput struct {
	Title    string
	Amount   decimal.Decimal
	Category string
	Type     model.TransactionType
	Date     time.Time
	Notes    string
}

func (in *TransactionInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.New("title is required")
	}
	if in.Type != model.TypeIncome && in.Type != model.TypeExpense {
		return errors.New("type must be Income or Expense")
	}
	if in.Date.IsZero() {
		return errors.New("date is required")
	}
	return nil
}

// Add creates a transaction and evaluates the budget auto-link for it.
func (s *TransactionService) Add(ctx context.Context, userID string, in TransactionInput) (*model.Transaction, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		UserID:   userID,
		Title:    strings.TrimSpace(in.Title),
		Amount:   in.Amount,
		Category: strings.TrimSpace(in.Category),
		Type:     in.Type,
		Date:     dateutil.Midnight(in.Date),
		Notes:    strings.TrimSpace(in.Notes),
	}
	txn.BudgetID = s.budgetSvc.LinkBudget(ctx, userID, txn.Category, txn.Date)

	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// Update edits a transaction. The budget link is re-evaluated only when
// category or date changed; an amount-only edit keeps the existing link.
func (s *TransactionService) Update(ctx context.Context, userID, txnID string, in TransactionInput) (*model.Transaction, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	txn, err := s.txnRepo.FindByID(ctx, userID, txnID)
	if err != nil {
		return nil, err
	}

	newCategory := strings.TrimSpace(in.Category)
	newDate := dateutil.Midnight(in.Date)
	relink := !strings.EqualFold(txn.Category, newCategory) || !dateutil.SameDay(txn.Date, newDate)

	txn.Title = strings.TrimSpace(in.Title)
	txn.Amount = in.Amount
	txn.Category = newCategory
	txn.Type = in.Type
	txn.Date = newDate
	txn.Notes = strings.TrimSpace(in.Notes)

	if relink {
		txn.BudgetID = s.budgetSvc.LinkBudget(ctx, userID, newCategory, newDate)
	}

	if err := s.txnRepo.Update(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, txnID string) (*model.Transaction, error) {
	return s.txnRepo.FindByID(ctx, userID, txnID)
}

func (s *TransactionService) ListForUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	return s.txnRepo.ListForUser(ctx, userID)
}

func (s *TransactionService) Delete(ctx context.Context, userID, txnID string) error {
	return s.txnRepo.Delete(ctx, userID, txnID)
}
