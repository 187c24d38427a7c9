package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"billminder/internal/model"
	"billminder/internal/repository"
)

// newTestDB opens a throwaway SQLite database with migrations applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func mustCreateUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, FirstName: "Test"}
	if err := repository.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateUtility(t *testing.T, db *gorm.DB, userID, provider string) *model.Utility {
	t.Helper()
	utility := &model.Utility{UserID: userID, Provider: provider, Active: true}
	if err := repository.NewUtilityRepository(db).Create(context.Background(), utility); err != nil {
		t.Fatalf("create utility: %v", err)
	}
	return utility
}

func mustCreateBill(t *testing.T, db *gorm.DB, userID, utilityID string, dueDate time.Time) *model.Bill {
	t.Helper()
	bill := &model.Bill{
		UserID:    userID,
		UtilityID: utilityID,
		DueDate:   dueDate,
		Amount:    decimal.NewFromFloat(42.50),
		Status:    model.StatusUpcoming,
	}
	if err := repository.NewBillRepository(db).Create(context.Background(), bill); err != nil {
		t.Fatalf("create bill: %v", err)
	}
	return bill
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixedNow pins a service clock for deterministic plans.
func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
