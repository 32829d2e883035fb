// Package optimistic keeps a local list that changes immediately and
// catches up with a remote store in the background.
//
// Every change is a Mutation. Apply runs against the local items at once;
// Persist then runs in its own goroutine. When Persist fails the list
// reverts that one change against whatever the items are by then, emits an
// Event and re-fetches the authoritative state, so a failure never leaves
// the local view diverged from the store.
//
// A re-fetch never drops a change that is still in flight: its Apply runs
// again on top of the fetched items. The same holds for a change that
// finished while the fetch was running, since the fetched items may predate
// it.
package optimistic

import (
	"context"
	"sync"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/logging"
)

var log = logging.For("optimistic")

// DefaultEventBuffer is how many failure events are kept for a slow reader.
const DefaultEventBuffer = 32

// Mutation is one optimistic change.
type Mutation[T any] struct {
	Name string
	// Apply returns the new local state. It receives a copy and may run
	// again on re-fetched items, so it should set state rather than toggle it.
	Apply func(items []T) []T
	// Persist writes the change to the store.
	Persist func(ctx context.Context) error
	// Revert undoes this change only. It runs on the state current at
	// failure time, so later mutations survive.
	Revert func(items []T) []T
	// Reconcile asks for a re-fetch after a successful Persist, for
	// changes whose local form is provisional (temporary ids).
	Reconcile bool
}

// Event reports a mutation that did not persist.
type Event struct {
	Mutation string
	Err      error
	At       time.Time
}

// Fetcher loads the authoritative items.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

type List[T any] struct {
	ctx    context.Context
	fetch  Fetcher[T]
	events chan Event

	mu    sync.Mutex
	items []T
	// pending holds changes a re-fetch may not reflect yet, oldest first.
	pending  []*pendingChange[T]
	finished uint64 // successful persists so far
	fetching int

	inflight sync.WaitGroup
}

type pendingChange[T any] struct {
	apply func(items []T) []T
	done  bool
	// doneAt is the finished count once this change persisted.
	doneAt uint64
}

// New returns an empty list. ctx bounds every Persist and re-fetch; fetch
// may be nil, in which case failures only revert.
func New[T any](ctx context.Context, fetch Fetcher[T]) *List[T] {
	return &List[T]{
		ctx:    ctx,
		fetch:  fetch,
		events: make(chan Event, DefaultEventBuffer),
	}
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// Snapshot returns a copy of the current local items.
func (l *List[T]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return clone(l.items)
}

// Replace swaps in authoritative items. Changes still in flight are applied
// on top.
func (l *List[T]) Replace(items []T) {
	l.mu.Lock()
	l.replaceLocked(items, l.finished)
	l.mu.Unlock()
}

// replaceLocked installs items plus every pending change that is unfinished
// or finished after since.
func (l *List[T]) replaceLocked(items []T, since uint64) {
	next := clone(items)
	for _, p := range l.pending {
		if !p.done || p.doneAt > since {
			next = p.apply(clone(next))
		}
	}
	l.items = next
}

// prune drops finished changes once no fetch can predate them.
func (l *List[T]) prune() {
	if l.fetching > 0 {
		return
	}
	kept := l.pending[:0]
	for _, p := range l.pending {
		if !p.done {
			kept = append(kept, p)
		}
	}
	clear(l.pending[len(kept):])
	l.pending = kept
}

func (l *List[T]) remove(target *pendingChange[T]) {
	for i, p := range l.pending {
		if p == target {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			return
		}
	}
}

// Events delivers failure events. When nobody reads, events past the buffer
// are dropped rather than blocking persistence.
func (l *List[T]) Events() <-chan Event {
	return l.events
}

// Wait blocks until every Persist started so far, and any re-fetch it
// triggered, has finished.
func (l *List[T]) Wait() {
	l.inflight.Wait()
}

// Reconcile replaces the local items with the fetcher's.
func (l *List[T]) Reconcile(ctx context.Context) error {
	if l.fetch == nil {
		return nil
	}

	l.mu.Lock()
	since := l.finished
	l.fetching++
	l.mu.Unlock()

	items, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetching--
	if err == nil {
		l.replaceLocked(items, since)
	}
	l.prune()
	return err
}

// Apply changes the local items now and persists in the background.
func (l *List[T]) Apply(m Mutation[T]) {
	l.mu.Lock()
	if m.Apply != nil {
		l.items = m.Apply(clone(l.items))
	}
	if m.Persist == nil {
		l.mu.Unlock()
		return
	}
	var change *pendingChange[T]
	if m.Apply != nil {
		change = &pendingChange[T]{apply: m.Apply}
		l.pending = append(l.pending, change)
	}
	l.mu.Unlock()

	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()

		err := m.Persist(l.ctx)
		if err == nil {
			l.mu.Lock()
			l.finished++
			if change != nil {
				change.done, change.doneAt = true, l.finished
			}
			l.prune()
			l.mu.Unlock()

			if m.Reconcile {
				l.reconcile(m.Name)
			}
			return
		}

		l.mu.Lock()
		if change != nil {
			l.remove(change)
		}
		if m.Revert != nil {
			l.items = m.Revert(clone(l.items))
		}
		l.mu.Unlock()
		l.emit(Event{Mutation: m.Name, Err: err, At: time.Now()})
		l.reconcile(m.Name)
	}()
}

func (l *List[T]) reconcile(name string) {
	if err := l.Reconcile(l.ctx); err != nil {
		log.WithError(err).WithField("mutation", name).Warn("re-fetch after mutation failed")
	}
}

func (l *List[T]) emit(ev Event) {
	select {
	case l.events <- ev:
	default:
		log.WithField("mutation", ev.Mutation).Warn("event buffer full, dropping failure event")
	}
}
