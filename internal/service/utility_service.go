package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"billminder/internal/model"
	"billminder/internal/repository"
)

// UtilityService manages utility providers and their default billing
// schedule.
type UtilityService struct {
	utilityRepo *repository.UtilityRepository
	billSvc     *BillService
}

func NewUtilityService(utilityRepo *repository.UtilityRepository, billSvc *BillService) *UtilityService {
	return &UtilityService{utilityRepo: utilityRepo, billSvc: billSvc}
}

// UtilityInput carries the fields to create or edit a utility.
type UtilityInput struct {
	Provider      string
	AccountNumber string
	DefaultDay    *int
	DefaultAmount decimal.Decimal
}

func (in *UtilityInput) validate() error {
	if strings.TrimSpace(in.Provider) == "" {
		return errors.New("provider is required")
	}
	if in.DefaultDay != nil && (*in.DefaultDay < 1 || *in.DefaultDay > 31) {
		return errors.New("default day must be between 1 and 31")
	}
	return nil
}

// Create stores a utility. When a default day is set, the first bill is
// auto-generated immediately along with its reminders; a failure there is
// logged and does not fail the utility create.
func (s *UtilityService) Create(ctx context.Context, userID string, in UtilityInput) (*model.Utility, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	utility := &model.Utility{
		UserID:        userID,
		Provider:      strings.TrimSpace(in.Provider),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		DefaultDay:    in.DefaultDay,
		DefaultAmount: in.DefaultAmount,
		Active:        true,
	}
	if err := s.utilityRepo.Create(ctx, utility); err != nil {
		return nil, err
	}

	if utility.DefaultDay != nil {
		if _, err := s.billSvc.CreateFromUtility(ctx, userID, utility.ID, decimal.Zero, "", time.Time{}); err != nil {
			slog.Error("auto bill for new utility failed", "utility_id", utility.ID, "error", err)
		}
	}
	return utility, nil
}

func (s *UtilityService) Get(ctx context.Context, utilityID string) (*model.Utility, error) {
	return s.utilityRepo.FindByID(ctx, utilityID)
}

func (s *UtilityService) ListForUser(ctx context.Context, userID string) ([]model.Utility, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	return s.utilityRepo.ListForUser(ctx, userID)
}

// Update edits a utility's provider details after an ownership check.
func (s *UtilityService) Update(ctx context.Context, userID, utilityID string, in UtilityInput) (*model.Utility, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	utility, err := s.utilityRepo.FindByID(ctx, utilityID)
	if err != nil {
		return nil, err
	}
	if utility.UserID != userID {
		return nil, errors.New("not authorized to update this utility")
	}

	utility.Provider = strings.TrimSpace(in.Provider)
	utility.AccountNumber = strings.TrimSpace(in.AccountNumber)
	utility.DefaultDay = in.DefaultDay
	utility.DefaultAmount = in.DefaultAmount
	if err := s.utilityRepo.Update(ctx, utility); err != nil {
		return nil, err
	}
	return utility, nil
}

// SetActive toggles whether new bills can be added to the utility.
// Existing bills and reminders are untouched.
func (s *UtilityService) SetActive(ctx context.Context, userID, utilityID string, active bool) error {
	utility, err := s.utilityRepo.FindByID(ctx, utilityID)
	if err != nil {
		return err
	}
	if utility.UserID != userID {
		return errors.New("not authorized to update this utility")
	}
	return s.utilityRepo.SetActive(ctx, utilityID, active)
}
