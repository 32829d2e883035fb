package expenses

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	expenses []Expense
	subs     []Subcategory
	err      error
}

func (m *memStore) match(e Expense, userID string, f Filter) bool {
	if e.UserID != userID {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Category != "" && f.Subcategory != "" && !strings.EqualFold(e.Subcategory, f.Subcategory) {
		return false
	}
	if f.Start != nil && e.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && e.Date.After(*f.End) {
		return false
	}
	return true
}

func (m *memStore) List(ctx context.Context, userID string, f Filter) ([]Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []Expense
	for _, e := range m.expenses {
		if m.match(e, userID, f) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memStore) Get(ctx context.Context, userID, id string) (Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.expenses {
		if e.ID == id && e.UserID == userID {
			return e, nil
		}
	}
	return Expense{}, ErrNotFound
}

func (m *memStore) Create(ctx context.Context, e *Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	m.expenses = append(m.expenses, *e)
	return nil
}

func (m *memStore) Update(ctx context.Context, e *Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.expenses {
		if m.expenses[i].ID == e.ID && m.expenses[i].UserID == e.UserID {
			m.expenses[i] = *e
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.expenses {
		if e.ID == id && e.UserID == userID {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) TotalSpent(ctx context.Context, userID string, start, end *normalize.Date) (decimal.Decimal, error) {
	rows, err := m.List(ctx, userID, Filter{Start: start, End: end})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range rows {
		total = total.Add(e.Amount)
	}
	return total, nil
}

func (m *memStore) ListSubcategories(ctx context.Context, userID, category string) ([]Subcategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Subcategory
	for _, s := range m.subs {
		if s.UserID == userID && (category == "" || s.Category == category) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) CreateSubcategory(ctx context.Context, s *Subcategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.subs {
		if existing.UserID == s.UserID && existing.Category == s.Category && strings.EqualFold(existing.Name, s.Name) {
			return ErrDuplicate
		}
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.subs = append(m.subs, *s)
	return nil
}

func (m *memStore) UsedSubcategories(ctx context.Context, userID string) (map[string][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string][]string{}
	for _, e := range m.expenses {
		if e.UserID == userID && e.Subcategory != "" {
			out[e.Category] = append(out[e.Category], e.Subcategory)
		}
	}
	return out, nil
}

var errStoreDown = errors.New("store unavailable")
