package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/panbanda/deadmethods/pkg/analyzer"
)

// Tracker wraps a progress bar on stderr. The total may be unknown when the
// bar is created; it is adjusted on the first update that carries one.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	w     io.Writer

	mu    sync.Mutex
	total int
	done  int
}

// NewTracker creates a progress bar with the given label and total count.
// A total of -1 starts as a spinner.
func NewTracker(label string, total int) *Tracker {
	return newTracker(os.Stderr, label, total)
}

func newTracker(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, w: w, total: total}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	_ = t.bar.Add(1)
}

// Update moves the bar to done of total. Updates from concurrent workers
// may arrive out of order; the bar never moves backwards.
func (t *Tracker) Update(done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if total > 0 && total != t.total {
		t.total = total
		t.bar.ChangeMax(total)
	}
	if done > t.done {
		t.done = done
		_ = t.bar.Set(done)
	}
}

// Analyzer returns an analyzer tracker that drives this bar.
func (t *Tracker) Analyzer() *analyzer.Tracker {
	return analyzer.NewTracker(func(done, total int, _ string) {
		t.Update(done, total)
	})
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.w, "  %s error: %v\n", t.label, err)
}
