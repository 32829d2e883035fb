package todos

import (
	"errors"
	"strings"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
)

// ContextPrefix marks the per-day note the board shows above today's tasks.
const ContextPrefix = "[CONTEXT] "

var (
	ErrNotFound    = errors.New("todo not found")
	ErrEmptyTask   = errors.New("task text is required")
	ErrWrongBucket = errors.New("task is not in that bucket")
	ErrDuplicateID = errors.New("duplicate id in order")
)

// Todo is one task. SortOrder is only meaningful among todos sharing a due
// date and is not unique: concurrent reorders may collide.
type Todo struct {
	ID         string          `gorm:"primaryKey" json:"id"`
	UserID     string          `gorm:"not null;index:idx_todos_user_due_sort,priority:1" json:"user_id"`
	TaskID     int             `gorm:"autoIncrement;not null" json:"task_id"`
	Task       string          `gorm:"not null" json:"task"`
	Status     bool            `gorm:"not null;default:false" json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	DueDate    *normalize.Date `gorm:"type:date;index:idx_todos_user_due_sort,priority:2" json:"due_date"`
	SortOrder  int             `gorm:"not null;default:0;index:idx_todos_user_due_sort,priority:3" json:"sort_order"`
	ProjectTag *string         `json:"project_tag"`
}

func (Todo) TableName() string { return "ledger.todos" }

// IsContext reports whether t is a day's context note rather than a task.
func (t Todo) IsContext() bool {
	return strings.HasPrefix(t.Task, ContextPrefix)
}

// Filter narrows a listing. Month matches the due date, or the creation
// date for undated todos.
type Filter struct {
	Month *normalize.Date
	Tag   string
}

// Board is the two-bucket view of a user's list.
type Board struct {
	Today   []Todo `json:"today"`
	Backlog []Todo `json:"backlog"`
	Context *Todo  `json:"context"`
}

func tagPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
