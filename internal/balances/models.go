package balances

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("monthly balance not found")
	ErrInvalidMonth = errors.New("month must be between 0 and 11")
	ErrInvalidYear  = errors.New("year must be between 1970 and 9999")
)

// MonthlyBalance is the starting balance a user set for one month.
// Month is zero based (January = 0).
type MonthlyBalance struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	UserID    string          `gorm:"not null;uniqueIndex:idx_balances_user_month_year,priority:1" json:"user_id"`
	Month     int             `gorm:"not null;uniqueIndex:idx_balances_user_month_year,priority:2" json:"month"`
	Year      int             `gorm:"not null;uniqueIndex:idx_balances_user_month_year,priority:3" json:"year"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (MonthlyBalance) TableName() string { return "ledger.monthly_balances" }

// Period identifies a month.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (p Period) Validate() error {
	if p.Month < 0 || p.Month > 11 {
		return ErrInvalidMonth
	}
	if p.Year < 1970 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()) - 1, Year: t.Year()}
}

// Remaining is the starting balance minus what was spent. A month without a
// balance starts from zero.
func Remaining(balance *decimal.Decimal, spent decimal.Decimal) decimal.Decimal {
	start := decimal.Zero
	if balance != nil {
		start = *balance
	}
	return start.Sub(spent)
}
