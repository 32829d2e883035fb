package balances

import (
	"context"
	"fmt"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/db"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store interface {
	Get(ctx context.Context, userID string, p Period) (MonthlyBalance, error)
	// Upsert writes the balance for (user, month, year). Concurrent writers
	// race; the last one wins.
	Upsert(ctx context.Context, b *MonthlyBalance) error
	Delete(ctx context.Context, userID string, p Period) error
}

// SpendSource sums a user's expenses over a date range.
type SpendSource interface {
	TotalSpent(ctx context.Context, userID string, start, end *normalize.Date) (decimal.Decimal, error)
}

type GormStore struct {
	DB *gorm.DB
}

func (s GormStore) Get(ctx context.Context, userID string, p Period) (MonthlyBalance, error) {
	var b MonthlyBalance
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND month = ? AND year = ?", userID, p.Month, p.Year).
		First(&b).Error
	if db.IsNotFound(err) {
		return b, ErrNotFound
	}
	if err != nil {
		return b, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

func (s GormStore) Upsert(ctx context.Context, b *MonthlyBalance) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.UpdatedAt = time.Now()

	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(b).Error
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}

	// On conflict the row keeps its original id; read it back.
	stored, err := s.Get(ctx, b.UserID, Period{Month: b.Month, Year: b.Year})
	if err != nil {
		return err
	}
	*b = stored
	return nil
}

func (s GormStore) Delete(ctx context.Context, userID string, p Period) error {
	res := s.DB.WithContext(ctx).
		Where("user_id = ? AND month = ? AND year = ?", userID, p.Month, p.Year).
		Delete(&MonthlyBalance{})
	if res.Error != nil {
		return fmt.Errorf("delete balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
