package todos

import (
	"context"
	"fmt"

	"github.com/EmpoweredVote/Ledger-Backend/internal/db"
	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence the todo handlers need. Every call is scoped to
// one user.
type Store interface {
	List(ctx context.Context, userID string, f Filter) ([]Todo, error)
	InBucket(ctx context.Context, userID string, due *normalize.Date) ([]Todo, error)
	Get(ctx context.Context, userID, id string) (Todo, error)
	Create(ctx context.Context, todos []Todo) ([]Todo, error)
	Update(ctx context.Context, t *Todo) error
	// SaveColumns writes only the named columns of existing todos, last
	// writer wins.
	SaveColumns(ctx context.Context, todos []Todo, columns ...string) error
	Delete(ctx context.Context, userID, id string) error
	DeleteMany(ctx context.Context, userID string, ids []string) (int64, error)
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(d *gorm.DB) GormStore { return GormStore{DB: d} }

func (s GormStore) scoped(ctx context.Context, userID string) *gorm.DB {
	return s.DB.WithContext(ctx).Where("user_id = ?", userID)
}

func (s GormStore) List(ctx context.Context, userID string, f Filter) ([]Todo, error) {
	q := s.scoped(ctx, userID)
	if f.Tag != "" {
		q = q.Where("project_tag = ?", f.Tag)
	}
	if f.Month != nil {
		start := normalize.Date{Year: f.Month.Year, Month: f.Month.Month, Day: 1}
		end := normalize.DateOf(start.Time().AddDate(0, 1, 0))
		q = q.Where(
			"(due_date >= ? AND due_date < ?) OR (due_date IS NULL AND created_at >= ? AND created_at < ?)",
			start, end, start.Time(), end.Time(),
		)
	}

	var out []Todo
	err := q.Order("due_date DESC").
		Order("sort_order ASC").
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return out, nil
}

func (s GormStore) InBucket(ctx context.Context, userID string, due *normalize.Date) ([]Todo, error) {
	q := s.scoped(ctx, userID)
	if due == nil {
		q = q.Where("due_date IS NULL")
	} else {
		q = q.Where("due_date = ?", *due)
	}

	var out []Todo
	if err := q.Order("sort_order ASC").Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list todo bucket: %w", err)
	}
	return out, nil
}

func (s GormStore) Get(ctx context.Context, userID, id string) (Todo, error) {
	var t Todo
	err := s.scoped(ctx, userID).First(&t, "id = ?", id).Error
	if db.IsNotFound(err) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

func (s GormStore) Create(ctx context.Context, todos []Todo) ([]Todo, error) {
	if len(todos) == 0 {
		return todos, nil
	}
	for i := range todos {
		if todos[i].ID == "" {
			todos[i].ID = uuid.NewString()
		}
	}
	if err := s.DB.WithContext(ctx).Create(&todos).Error; err != nil {
		return nil, fmt.Errorf("insert todos: %w", err)
	}
	return todos, nil
}

func (s GormStore) Update(ctx context.Context, t *Todo) error {
	res := s.DB.WithContext(ctx).
		Model(&Todo{}).
		Where("id = ? AND user_id = ?", t.ID, t.UserID).
		Updates(map[string]any{
			"task":        t.Task,
			"status":      t.Status,
			"due_date":    t.DueDate,
			"sort_order":  t.SortOrder,
			"project_tag": t.ProjectTag,
		})
	if res.Error != nil {
		return fmt.Errorf("update todo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s GormStore) SaveColumns(ctx context.Context, todos []Todo, columns ...string) error {
	if len(todos) == 0 {
		return nil
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(&todos).Error
	if err != nil {
		return fmt.Errorf("save todo columns: %w", err)
	}
	return nil
}

func (s GormStore) Delete(ctx context.Context, userID, id string) error {
	res := s.scoped(ctx, userID).Delete(&Todo{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete todo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes the given todos, or every todo the user has when ids
// is empty.
func (s GormStore) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	q := s.scoped(ctx, userID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Delete(&Todo{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete todos: %w", res.Error)
	}
	return res.RowsAffected, nil
}
