package todos

import (
	"context"
	"sync"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/google/uuid"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu    sync.Mutex
	todos []Todo
	err   error
	clock time.Time
}

func (m *memStore) List(ctx context.Context, userID string, f Filter) ([]Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []Todo
	for _, t := range m.todos {
		if t.UserID != userID {
			continue
		}
		if f.Tag != "" && (t.ProjectTag == nil || *t.ProjectTag != f.Tag) {
			continue
		}
		if f.Month != nil {
			y, mo := t.CreatedAt.Year(), t.CreatedAt.Month()
			if t.DueDate != nil {
				y, mo = t.DueDate.Year, t.DueDate.Month
			}
			if y != f.Month.Year || mo != f.Month.Month {
				continue
			}
		}
		out = append(out, t)
	}
	Sort(out)
	return out, nil
}

func (m *memStore) InBucket(ctx context.Context, userID string, due *normalize.Date) ([]Todo, error) {
	all, err := m.List(ctx, userID, Filter{})
	if err != nil {
		return nil, err
	}
	return InBucket(all, due), nil
}

func (m *memStore) Get(ctx context.Context, userID, id string) (Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Todo{}, m.err
	}
	for _, t := range m.todos {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return Todo{}, ErrNotFound
}

func (m *memStore) Create(ctx context.Context, todos []Todo) ([]Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range todos {
		if todos[i].ID == "" {
			todos[i].ID = uuid.NewString()
		}
		m.clock = m.clock.Add(time.Second)
		todos[i].CreatedAt = m.clock
		todos[i].TaskID = len(m.todos) + 1
		m.todos = append(m.todos, todos[i])
	}
	return todos, nil
}

func (m *memStore) Update(ctx context.Context, t *Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range m.todos {
		if m.todos[i].ID == t.ID && m.todos[i].UserID == t.UserID {
			m.todos[i] = *t
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) SaveColumns(ctx context.Context, todos []Todo, columns ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, t := range todos {
		for i := range m.todos {
			if m.todos[i].ID != t.ID {
				continue
			}
			for _, c := range columns {
				switch c {
				case "sort_order":
					m.todos[i].SortOrder = t.SortOrder
				case "due_date":
					m.todos[i].DueDate = t.DueDate
				}
			}
		}
	}
	return nil
}

func (m *memStore) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, t := range m.todos {
		if t.ID == id && t.UserID == userID {
			m.todos = append(m.todos[:i], m.todos[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var kept []Todo
	var n int64
	for _, t := range m.todos {
		if t.UserID == userID && (len(ids) == 0 || want[t.ID]) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	m.todos = kept
	return n, nil
}

func (m *memStore) byID(id string) Todo {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.todos {
		if t.ID == id {
			return t
		}
	}
	return Todo{}
}
