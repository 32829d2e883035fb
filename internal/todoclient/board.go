package todoclient

import (
	"context"
	"errors"
	"strings"

	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
	"github.com/EmpoweredVote/Ledger-Backend/internal/optimistic"
	"github.com/EmpoweredVote/Ledger-Backend/internal/todos"
	"github.com/google/uuid"
)

// TempIDPrefix marks todos the server has not assigned an id to yet.
const TempIDPrefix = "temp-"

var (
	ErrUnknownTodo = errors.New("todo not on the board")
	ErrEmptyTask   = errors.New("task text is required")
	ErrPending     = errors.New("todo is still being created")
)

// Board is the local, optimistic view of a user's todos. Every change shows
// up at once and is written to the backend in the background; a failed write
// is undone, reported on Events and followed by a re-fetch.
type Board struct {
	backend Backend
	today   normalize.Date
	list    *optimistic.List[todos.Todo]
}

func NewBoard(ctx context.Context, backend Backend, today normalize.Date) *Board {
	b := &Board{backend: backend, today: today}
	b.list = optimistic.New(ctx, func(ctx context.Context) ([]todos.Todo, error) {
		return backend.List(ctx, today)
	})
	return b
}

// Load replaces the board with the backend's list.
func (b *Board) Load(ctx context.Context) error {
	return b.list.Reconcile(ctx)
}

func (b *Board) Events() <-chan optimistic.Event { return b.list.Events() }

// Wait blocks until pending writes have finished.
func (b *Board) Wait() { b.list.Wait() }

func (b *Board) Todos() []todos.Todo {
	out := b.list.Snapshot()
	todos.Sort(out)
	return out
}

// Bucket returns the todos due on due (nil for undated) by sort order.
func (b *Board) Bucket(due *normalize.Date) []todos.Todo {
	return todos.InBucket(b.list.Snapshot(), due)
}

func (b *Board) find(id string) (todos.Todo, error) {
	if strings.HasPrefix(id, TempIDPrefix) {
		return todos.Todo{}, ErrPending
	}
	for _, t := range b.list.Snapshot() {
		if t.ID == id {
			return t, nil
		}
	}
	return todos.Todo{}, ErrUnknownTodo
}

func indexOf(items []todos.Todo, id string) int {
	for i, t := range items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func without(items []todos.Todo, id string) []todos.Todo {
	if i := indexOf(items, id); i >= 0 {
		return append(items[:i], items[i+1:]...)
	}
	return items
}

// Add puts a new task at the end of today's list under a temporary id and
// returns that id. Once created the board re-fetches to pick up the real id.
func (b *Board) Add(text, tag string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTask
	}
	tempID := TempIDPrefix + uuid.NewString()
	due := b.today

	var pt *string
	if tag = strings.TrimSpace(tag); tag != "" {
		pt = &tag
	}

	b.list.Apply(optimistic.Mutation[todos.Todo]{
		Name: "add",
		Apply: func(items []todos.Todo) []todos.Todo {
			if indexOf(items, tempID) >= 0 {
				return items
			}
			return append(items, todos.Todo{
				ID:         tempID,
				Task:       text,
				DueDate:    &due,
				SortOrder:  todos.NextSortOrder(items, &due),
				ProjectTag: pt,
			})
		},
		Persist: func(ctx context.Context) error {
			_, err := b.backend.Create(ctx, CreateRequest{Task: text, DueDate: &due, ProjectTag: tag})
			return err
		},
		Revert: func(items []todos.Todo) []todos.Todo {
			return without(items, tempID)
		},
		Reconcile: true,
	})
	return tempID, nil
}

// Toggle flips completion.
func (b *Board) Toggle(id string) error {
	t, err := b.find(id)
	if err != nil {
		return err
	}
	status := !t.Status

	b.list.Apply(optimistic.Mutation[todos.Todo]{
		Name:  "toggle",
		Apply: setStatus(id, status),
		Persist: func(ctx context.Context) error {
			_, err := b.backend.Update(ctx, id, UpdateRequest{Status: &status})
			return err
		},
		Revert: setStatus(id, t.Status),
	})
	return nil
}

func setStatus(id string, status bool) func([]todos.Todo) []todos.Todo {
	return func(items []todos.Todo) []todos.Todo {
		if i := indexOf(items, id); i >= 0 {
			items[i].Status = status
		}
		return items
	}
}

// Edit changes the text and tag; an empty tag clears it.
func (b *Board) Edit(id, text, tag string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyTask
	}
	old, err := b.find(id)
	if err != nil {
		return err
	}
	tag = strings.TrimSpace(tag)
	var pt *string
	if tag != "" {
		pt = &tag
	}

	b.list.Apply(optimistic.Mutation[todos.Todo]{
		Name:  "edit",
		Apply: setText(id, text, pt),
		Persist: func(ctx context.Context) error {
			_, err := b.backend.Update(ctx, id, UpdateRequest{Task: &text, ProjectTag: &tag})
			return err
		},
		Revert: setText(id, old.Task, old.ProjectTag),
	})
	return nil
}

func setText(id, text string, tag *string) func([]todos.Todo) []todos.Todo {
	return func(items []todos.Todo) []todos.Todo {
		if i := indexOf(items, id); i >= 0 {
			items[i].Task = text
			items[i].ProjectTag = tag
		}
		return items
	}
}

// Delete removes a todo. On failure it is put back where it was.
func (b *Board) Delete(id string) error {
	old, err := b.find(id)
	if err != nil {
		return err
	}
	pos := indexOf(b.list.Snapshot(), id)

	b.list.Apply(optimistic.Mutation[todos.Todo]{
		Name: "delete",
		Apply: func(items []todos.Todo) []todos.Todo {
			return without(items, id)
		},
		Persist: func(ctx context.Context) error {
			return b.backend.Delete(ctx, id)
		},
		Revert: func(items []todos.Todo) []todos.Todo {
			if indexOf(items, id) >= 0 {
				return items
			}
			at := min(max(pos, 0), len(items))
			return append(items[:at], append([]todos.Todo{old}, items[at:]...)...)
		},
	})
	return nil
}

// MoveDate sends a todo to another day (nil for the backlog), last in that
// day's order.
func (b *Board) MoveDate(id string, due *normalize.Date) error {
	old, err := b.find(id)
	if err != nil {
		return err
	}
	if todos.SameDay(old.DueDate, due) {
		return nil
	}
	var target *normalize.Date
	if due != nil {
		d := *due
		target = &d
	}

	b.list.Apply(optimistic.Mutation[todos.Todo]{
		Name: "move-date",
		Apply: func(items []todos.Todo) []todos.Todo {
			if i := indexOf(items, id); i >= 0 {
				items[i].SortOrder = todos.NextSortOrder(items, target)
				items[i].DueDate = target
			}
			return items
		},
		Persist: func(ctx context.Context) error {
			_, err := b.backend.MoveDate(ctx, id, target)
			return err
		},
		Revert: func(items []todos.Todo) []todos.Todo {
			if i := indexOf(items, id); i >= 0 {
				items[i].DueDate = old.DueDate
				items[i].SortOrder = old.SortOrder
			}
			return items
		},
	})
	return nil
}

// Reorder moves the todo at position from to position to inside one day's
// list and saves the whole day's order. A day holding a todo that is still
// being created can't be reordered until the server has assigned its id.
func (b *Board) Reorder(due *normalize.Date, from, to int) error {
	bucket := b.Bucket(due)
	if from < 0 || from >= len(bucket) || to < 0 || to >= len(bucket) {
		return ErrUnknownTodo
	}

	previous := make(map[string]int, len(bucket))
	for _, t := range bucket {
		if strings.HasPrefix(t.ID, TempIDPrefix) {
			return ErrPending
		}
		previous[t.ID] = t.SortOrder
	}

	moved := todos.Move(bucket, from, to)
	todos.Renumber(moved)
	next := make(map[string]int, len(moved))
	ids := make([]string, len(moved))
	for i, t := range moved {
		next[t.ID] = t.SortOrder
		ids[i] = t.ID
	}

	b.list.Apply(optimistic.Mutation[todos.Todo]{
		Name:  "reorder",
		Apply: setOrders(next),
		Persist: func(ctx context.Context) error {
			return b.backend.Reorder(ctx, due, ids)
		},
		Revert: setOrders(previous),
	})
	return nil
}

func setOrders(orders map[string]int) func([]todos.Todo) []todos.Todo {
	return func(items []todos.Todo) []todos.Todo {
		for i := range items {
			if o, ok := orders[items[i].ID]; ok {
				items[i].SortOrder = o
			}
		}
		return items
	}
}
