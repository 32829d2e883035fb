package todos

import (
	"fmt"
	"sort"

	"github.com/EmpoweredVote/Ledger-Backend/internal/normalize"
)

const (
	BucketToday   = "today"
	BucketBacklog = "backlog"
)

func datePtr(d normalize.Date) *normalize.Date { return &d }

// SameDay compares nullable due dates; two nils are the same bucket.
func SameDay(a, b *normalize.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Bucket places a todo: due today is "today", anything else is backlog.
func Bucket(t Todo, today normalize.Date) string {
	if t.DueDate != nil && *t.DueDate == today {
		return BucketToday
	}
	return BucketBacklog
}

// InBucket returns the todos due on due, ordered by sort order.
func InBucket(list []Todo, due *normalize.Date) []Todo {
	out := []Todo{}
	for _, t := range list {
		if SameDay(t.DueDate, due) {
			out = append(out, t)
		}
	}
	return InBucketOrder(out)
}

// NextSortOrder is one past the largest sort order due on due, or 0 when
// nothing is due then.
func NextSortOrder(list []Todo, due *normalize.Date) int {
	next := 0
	for _, t := range list {
		if SameDay(t.DueDate, due) && t.SortOrder+1 > next {
			next = t.SortOrder + 1
		}
	}
	return next
}

// Move returns a copy of s with the element at from moved to index to.
// Out of range indexes leave the order unchanged.
func Move[T any](s []T, from, to int) []T {
	out := make([]T, len(s))
	copy(out, s)
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) || from == to {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}

// Renumber sets every sort order to the todo's index.
func Renumber(list []Todo) {
	for i := range list {
		list[i].SortOrder = i
	}
}

// Sort orders a listing by due date (undated first, then newest), sort
// order, then newest created.
func Sort(list []Todo) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !SameDay(a.DueDate, b.DueDate) {
			if a.DueDate == nil {
				return true
			}
			if b.DueDate == nil {
				return false
			}
			return a.DueDate.After(*b.DueDate)
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// SplitBoard groups a listing into today and backlog. Today's context note
// is pulled out of both lists.
func SplitBoard(list []Todo, today normalize.Date) Board {
	b := Board{Today: []Todo{}, Backlog: []Todo{}}
	for _, t := range list {
		if t.IsContext() {
			if Bucket(t, today) == BucketToday && b.Context == nil {
				c := t
				b.Context = &c
			}
			continue
		}
		if Bucket(t, today) == BucketToday {
			b.Today = append(b.Today, t)
		} else {
			b.Backlog = append(b.Backlog, t)
		}
	}
	b.Today = InBucket(b.Today, datePtr(today))
	Sort(b.Backlog)
	return b
}

// MissingDefaults builds the default tasks not yet present for today,
// numbered after today's existing tasks.
func MissingDefaults(list []Todo, userID string, today normalize.Date, defaults []string) []Todo {
	due := datePtr(today)
	next := NextSortOrder(list, due)

	var out []Todo
	for _, task := range defaults {
		present := false
		for _, t := range list {
			if SameDay(t.DueDate, due) && t.Task == task {
				present = true
				break
			}
		}
		if present {
			continue
		}
		out = append(out, Todo{
			UserID:    userID,
			Task:      task,
			DueDate:   datePtr(today),
			SortOrder: next,
		})
		next++
	}
	return out
}

// ApplyOrder renumbers a bucket so ids come first in the given order.
// Bucket members not named keep their relative order after them.
func ApplyOrder(bucket []Todo, ids []string) ([]Todo, error) {
	byID := make(map[string]Todo, len(bucket))
	for _, t := range bucket {
		byID[t.ID] = t
	}

	out := make([]Todo, 0, len(bucket))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrWrongBucket, id)
		}
		seen[id] = true
		out = append(out, t)
	}
	for _, t := range bucket {
		if !seen[t.ID] {
			out = append(out, t)
		}
	}
	Renumber(out)
	return out, nil
}

// PlanMovePending moves every incomplete todo not due today onto today,
// after today's existing tasks. Returns only the changed todos.
func PlanMovePending(list []Todo, today normalize.Date) []Todo {
	due := datePtr(today)
	next := NextSortOrder(list, due)

	pending := make([]Todo, 0)
	for _, t := range list {
		if t.Status || SameDay(t.DueDate, due) || t.IsContext() {
			continue
		}
		pending = append(pending, t)
	}
	Sort(pending)
	for i := range pending {
		pending[i].DueDate = datePtr(today)
		pending[i].SortOrder = next
		next++
	}
	return pending
}

// SinkDone puts a bucket's incomplete todos first and completed ones after,
// keeping relative order inside each group, and renumbers.
func SinkDone(bucket []Todo) []Todo {
	ordered := InBucketOrder(bucket)
	out := make([]Todo, 0, len(ordered))
	for _, t := range ordered {
		if !t.Status {
			out = append(out, t)
		}
	}
	for _, t := range ordered {
		if t.Status {
			out = append(out, t)
		}
	}
	Renumber(out)
	return out
}

// InBucketOrder sorts a single bucket by sort order without filtering.
func InBucketOrder(bucket []Todo) []Todo {
	out := make([]Todo, len(bucket))
	copy(out, bucket)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
