// Package journal records the outcome of linear solves.
//
// A journal keeps one Entry per solve, grouped by the name of the system
// that was solved and ordered by creation time. MemoryJournal keeps entries
// in process memory; the dynamodb subpackage persists them to a table.
package journal

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/sparsela"
)

// ErrDuplicate is returned when an entry with the same system and creation
// time already exists.
var ErrDuplicate = errors.New("journal: duplicate entry")

// TimeLayout formats CreatedAt so that lexical order is chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one recorded solve.
type Entry struct {
	ID         uuid.UUID
	System     string
	Method     string
	Rows       int
	Cols       int
	Lanes      int
	LaneWidth  int
	Iterations int
	Residual   float64
	Elapsed    time.Duration
	Converged  bool
	Param      float64
	CreatedAt  time.Time
}

// NewEntry builds an entry for system from a solver report.
func NewEntry(system string, r sparsela.Report) Entry {
	return Entry{
		ID:         uuid.New(),
		System:     system,
		Method:     r.Method.String(),
		Rows:       r.Rows,
		Cols:       r.Cols,
		Lanes:      r.Lanes,
		LaneWidth:  r.LaneWidth,
		Iterations: r.Iterations,
		Residual:   r.Residual,
		Elapsed:    r.Elapsed,
		Converged:  r.Converged,
		Param:      r.Param,
		CreatedAt:  time.Now().UTC(),
	}
}

// SortKey returns the CreatedAt value used to order entries of a system.
func (e Entry) SortKey() string {
	return e.CreatedAt.UTC().Format(TimeLayout)
}

// Journal stores solve entries.
type Journal interface {
	// Append records an entry.
	Append(ctx context.Context, e Entry) error
	// List returns up to limit entries of system, newest first.
	// A limit <= 0 returns all entries.
	List(ctx context.Context, system string, limit int) ([]Entry, error)
}

// MemoryJournal is a Journal held in memory.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewMemoryJournal creates an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: make(map[string][]Entry)}
}

// Append implements Journal.
func (j *MemoryJournal) Append(_ context.Context, e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	list := j.entries[e.System]
	key := e.SortKey()
	i, found := slices.BinarySearchFunc(list, key, func(x Entry, k string) int {
		return strings.Compare(x.SortKey(), k)
	})
	if found {
		return ErrDuplicate
	}
	j.entries[e.System] = slices.Insert(list, i, e)
	return nil
}

// List implements Journal.
func (j *MemoryJournal) List(_ context.Context, system string, limit int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	list := j.entries[system]
	out := make([]Entry, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, list[i])
	}
	return out, nil
}
