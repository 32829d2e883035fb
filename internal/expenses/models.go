package expenses

import (
	"errors"
	"strings"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
	"github.com/shopspring/decimal"
)

// BlankDescription is stored when an expense has no description.
const BlankDescription = "NULL"

var (
	ErrNotFound        = errors.New("expense not found")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidSource   = errors.New("invalid source")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrMissingDate     = errors.New("date is required")
	ErrDuplicate       = errors.New("subcategory already exists")
)

// Expense is a single spending record owned by one user.
type Expense struct {
	ID            string          `gorm:"primaryKey" json:"id"`
	UserID        string          `gorm:"not null;index:idx_expenses_user_date,priority:1" json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description   string          `gorm:"not null" json:"description"`
	Category      string          `gorm:"not null" json:"category"`
	Subcategory   string          `json:"subcategory"`
	Date          normalize.Date  `gorm:"type:date;not null;index:idx_expenses_user_date,priority:2" json:"date"`
	Source        string          `gorm:"not null" json:"source"`
	ImportBatchID *string         `gorm:"index" json:"import_batch_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Expense) TableName() string { return "ledger.expenses" }

// Subcategory is a user-added tag under a category. It is a label, not a
// foreign key: expenses may carry subcategories that never appear here.
type Subcategory struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	Category  string    `gorm:"not null" json:"category"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Subcategory) TableName() string { return "ledger.subcategories" }

// Filter narrows an expense listing. Zero values mean "no filter".
type Filter struct {
	Category    string
	Subcategory string
	Start       *normalize.Date
	End         *normalize.Date
}

// Input is the writable part of an expense.
type Input struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Date        normalize.Date  `json:"date"`
	Source      string          `json:"source"`
}

// Normalize validates in against the taxonomy and fills defaults.
func (in Input) Normalize(cfg taxonomy.Config) (Input, error) {
	if !cfg.HasCategory(in.Category) {
		return in, ErrInvalidCategory
	}
	in.Source = strings.TrimSpace(in.Source)
	if in.Source == "" {
		in.Source = cfg.DefaultSource
	}
	if !cfg.HasSource(in.Source) {
		return in, ErrInvalidSource
	}
	if in.Amount.IsNegative() {
		return in, ErrNegativeAmount
	}
	if in.Date.IsZero() {
		return in, ErrMissingDate
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		in.Description = BlankDescription
	}
	in.Subcategory = strings.TrimSpace(in.Subcategory)
	in.Amount = in.Amount.Round(2)
	return in, nil
}

func (in Input) apply(e *Expense) {
	e.Amount = in.Amount
	e.Description = in.Description
	e.Category = in.Category
	e.Subcategory = in.Subcategory
	e.Date = in.Date
	e.Source = in.Source
}
