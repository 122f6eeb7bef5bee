// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Len returns the number of collected errors.
func (e *ProcessingErrors) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors)
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap returns nil (ProcessingErrors doesn't wrap a single error).
func (e *ProcessingErrors) Unwrap() error {
	return nil
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x suits the mostly I/O-bound reads and short regexp scans done here.
const DefaultWorkerMultiplier = 2

// Workers returns n, or 2x NumCPU when n <= 0.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// ProgressFunc is called after each item is processed.
type ProgressFunc func()

// Indexed holds per-file results in input order. OK[i] is false when the
// file at index i failed or was skipped after cancellation.
type Indexed[T any] struct {
	Values []T
	OK     []bool
}

// ForEachFileIndexed processes files on a bounded pool and stores each result
// at its input index, so no re-sorting is needed afterwards. Errors from
// individual files are collected and never stop the pool. If maxWorkers is
// <= 0, defaults to 2x NumCPU.
func ForEachFileIndexed[T any](
	ctx context.Context,
	files []string,
	maxWorkers int,
	fn func(string) (T, error),
	onProgress ProgressFunc,
) (Indexed[T], *ProcessingErrors) {
	out := Indexed[T]{
		Values: make([]T, len(files)),
		OK:     make([]bool, len(files)),
	}
	if len(files) == 0 {
		return out, nil
	}

	errs := &ProcessingErrors{}
	p := pool.New().WithMaxGoroutines(Workers(maxWorkers)).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			defer func() {
				if onProgress != nil {
					onProgress()
				}
			}()

			// Check for cancellation before processing
			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return ctx.Err()
			default:
			}

			result, err := fn(path)
			if err != nil {
				errs.Add(path, err)
				return nil // Don't stop pool on individual file errors
			}

			// Each index is written by exactly one goroutine.
			out.Values[i] = result
			out.OK[i] = true
			return nil
		})
	}
	_ = p.Wait() // Context errors are already captured in errs

	if !errs.HasErrors() {
		return out, nil
	}
	return out, errs
}

// ForEach runs fn(i) for i in [0, n) on a bounded pool. It stops scheduling
// new work once ctx is done and returns ctx.Err() in that case.
func ForEach(ctx context.Context, n, maxWorkers int, fn func(i int), onProgress ProgressFunc) error {
	if n == 0 {
		return ctx.Err()
	}

	p := pool.New().WithMaxGoroutines(Workers(maxWorkers)).WithContext(ctx)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
			if onProgress != nil {
				onProgress()
			}
			return nil
		})
	}
	_ = p.Wait()
	return ctx.Err()
}
