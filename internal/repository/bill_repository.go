package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"billminder/internal/model"
)

// BillRepository handles CRUD for bills.
type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) *BillRepository {
	return &BillRepository{db: db}
}

func (r *BillRepository) Create(ctx context.Context, bill *model.Bill) error {
	if err := r.db.WithContext(ctx).Create(bill).Error; err != nil {
		return fmt.Errorf("create bill: %w", err)
	}
	return nil
}

func (r *BillRepository) FindByID(ctx context.Context, billID string) (*model.Bill, error) {
	var bill model.Bill
	if err := r.db.WithContext(ctx).Where("id = ?", billID).First(&bill).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *BillRepository) ListForUser(ctx context.Context, userID string) ([]model.Bill, error) {
	var bills []model.Bill
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("due_date ASC").
		Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *BillRepository) ListForUtility(ctx context.Context, userID, utilityID string) ([]model.Bill, error) {
	var bills []model.Bill
	if err := r.db.WithContext(ctx).Where("user_id = ? AND utility_id = ?", userID, utilityID).
		Order("due_date ASC").
		Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// EarliestForUtility returns the utility's oldest bill by due date. Used to
// protect the initial auto-generated bill from deletion.
func (r *BillRepository) EarliestForUtility(ctx context.Context, utilityID string) (*model.Bill, error) {
	var bill model.Bill
	if err := r.db.WithContext(ctx).Where("utility_id = ?", utilityID).
		Order("due_date ASC, created_at ASC").
		First(&bill).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *BillRepository) Update(ctx context.Context, bill *model.Bill) error {
	if err := r.db.WithContext(ctx).Save(bill).Error; err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	return nil
}

func (r *BillRepository) Delete(ctx context.Context, userID, billID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, billID).
		Delete(&model.Bill{}).Error; err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return nil
}

// HistoryFilter narrows a bill history query. Zero values mean "no filter".
type HistoryFilter struct {
	StartDate  *time.Time // inclusive
	EndDate    *time.Time // exclusive
	Status     model.BillStatus
	SearchTerm string
}

// BillWithUtility joins a bill with its utility for history views.
type BillWithUtility struct {
	model.Bill    `gorm:"embedded"`
	Provider      string
	AccountNumber string
}

// History returns prior bills joined with their utility, newest due date
// first, applying the optional date window, status and search filters.
func (r *BillRepository) History(ctx context.Context, userID string, filter HistoryFilter) ([]BillWithUtility, error) {
	q := r.db.WithContext(ctx).Model(&model.Bill{}).
		Select("bills.*, utilities.provider AS provider, utilities.account_number AS account_number").
		Joins("JOIN utilities ON utilities.id = bills.utility_id").
		Where("bills.user_id = ?", userID)

	if filter.StartDate != nil && filter.EndDate != nil {
		q = q.Where("bills.due_date >= ? AND bills.due_date < ?", *filter.StartDate, *filter.EndDate)
	}
	if s := strings.TrimSpace(string(filter.Status)); s != "" {
		q = q.Where("LOWER(bills.status) = ?", strings.ToLower(s))
	}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		pattern := "%" + term + "%"
		// Notes double as free-form tags for now.
		q = q.Where("utilities.provider LIKE ? OR utilities.account_number LIKE ? OR bills.notes LIKE ?",
			pattern, pattern, pattern)
	}

	var rows []BillWithUtility
	if err := q.Order("bills.due_date DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("bill history: %w", err)
	}
	return rows, nil
}
