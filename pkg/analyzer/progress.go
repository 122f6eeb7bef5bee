package analyzer

import (
	"context"
	"sync/atomic"
)

// ProgressFunc receives progress updates: done items so far, the expected
// total, and the item that just finished.
type ProgressFunc func(done, total int, item string)

// Tracker counts finished work items and forwards each step to a callback.
// It is safe for concurrent use from multiple goroutines.
type Tracker struct {
	total    atomic.Int64
	done     atomic.Int64
	callback ProgressFunc
}

// NewTracker creates a tracker. A nil callback only counts.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// SetTotal sets the expected number of items. Analyzers call this once the
// work list is known.
func (t *Tracker) SetTotal(n int) {
	t.total.Store(int64(n))
}

// Tick marks item as finished.
func (t *Tracker) Tick(item string) {
	done := int(t.done.Add(1))
	if t.callback != nil {
		t.callback(done, int(t.total.Load()), item)
	}
}

// Done returns the number of finished items.
func (t *Tracker) Done() int {
	return int(t.done.Load())
}

// Total returns the expected number of items.
func (t *Tracker) Total() int {
	return int(t.total.Load())
}

type trackerKey struct{}

// WithTracker returns a context that carries a progress tracker.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext extracts the progress tracker from the context.
// Returns nil if no tracker was set.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
