package expenses

import (
	"context"
	"fmt"

	"github.com/EmpoweredVote/Ledger-Backend/internal/db"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the persistence the expense handlers need. Every call is scoped
// to one user.
type Store interface {
	List(ctx context.Context, userID string, f Filter) ([]Expense, error)
	Get(ctx context.Context, userID, id string) (Expense, error)
	Create(ctx context.Context, e *Expense) error
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, userID, id string) error
	TotalSpent(ctx context.Context, userID string, start, end *normalize.Date) (decimal.Decimal, error)

	ListSubcategories(ctx context.Context, userID, category string) ([]Subcategory, error)
	CreateSubcategory(ctx context.Context, s *Subcategory) error
	// UsedSubcategories returns the distinct subcategory strings already on
	// the user's expenses, keyed by category.
	UsedSubcategories(ctx context.Context, userID string) (map[string][]string, error)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(d *gorm.DB) GormStore { return GormStore{DB: d} }

func (s GormStore) scoped(ctx context.Context, userID string) *gorm.DB {
	return s.DB.WithContext(ctx).Where("user_id = ?", userID)
}

func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
		if f.Subcategory != "" {
			q = q.Where("lower(subcategory) = lower(?)", f.Subcategory)
		}
	}
	if f.Start != nil {
		q = q.Where("date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("date <= ?", *f.End)
	}
	return q
}

func (s GormStore) List(ctx context.Context, userID string, f Filter) ([]Expense, error) {
	var out []Expense
	err := applyFilter(s.scoped(ctx, userID), f).
		Order("date DESC").
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (s GormStore) Get(ctx context.Context, userID, id string) (Expense, error) {
	var e Expense
	err := s.scoped(ctx, userID).First(&e, "id = ?", id).Error
	if db.IsNotFound(err) {
		return e, ErrNotFound
	}
	if err != nil {
		return e, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (s GormStore) Create(ctx context.Context, e *Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.DB.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (s GormStore) Update(ctx context.Context, e *Expense) error {
	res := s.DB.WithContext(ctx).
		Model(&Expense{}).
		Where("id = ? AND user_id = ?", e.ID, e.UserID).
		Updates(map[string]any{
			"amount":      e.Amount,
			"description": e.Description,
			"category":    e.Category,
			"subcategory": e.Subcategory,
			"date":        e.Date,
			"source":      e.Source,
		})
	if res.Error != nil {
		return fmt.Errorf("update expense: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s GormStore) Delete(ctx context.Context, userID, id string) error {
	res := s.scoped(ctx, userID).Delete(&Expense{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete expense: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s GormStore) TotalSpent(ctx context.Context, userID string, start, end *normalize.Date) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := applyFilter(s.scoped(ctx, userID).Model(&Expense{}), Filter{Start: start, End: end}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

func (s GormStore) ListSubcategories(ctx context.Context, userID, category string) ([]Subcategory, error) {
	q := s.scoped(ctx, userID)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []Subcategory
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return out, nil
}

func (s GormStore) CreateSubcategory(ctx context.Context, sub *Subcategory) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	err := s.DB.WithContext(ctx).Create(sub).Error
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert subcategory: %w", err)
	}
	return nil
}

func (s GormStore) UsedSubcategories(ctx context.Context, userID string) (map[string][]string, error) {
	var pairs []struct {
		Category    string
		Subcategory string
	}
	err := s.scoped(ctx, userID).
		Model(&Expense{}).
		Select("DISTINCT category, subcategory").
		Where("subcategory <> ''").
		Order("category, subcategory").
		Scan(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("list used subcategories: %w", err)
	}

	out := map[string][]string{}
	for _, p := range pairs {
		out[p.Category] = append(out[p.Category], p.Subcategory)
	}
	return out, nil
}
