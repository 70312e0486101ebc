package autosave

import (
	"sync"
	"time"
)

// DefaultQuiet is the quiet period the debouncer waits for after the last
// trigger before firing.
const DefaultQuiet = 2 * time.Second

// Debouncer coalesces a burst of triggers into a single callback: each
// Trigger cancels any pending fire and restarts the quiet-period timer.
//
// It is the explicit, cancellable form of the autosave timer: the owning
// session calls Trigger on every mutation and Stop on teardown. Stop
// cancels any pending fire and prevents new ones; a fire that is already
// past its stopped-check keeps running, so callers that must not observe a
// late callback also gate it on their own teardown flag (the session does).
type Debouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer that runs fn after quiet elapses with
// no further triggers. A non-positive quiet falls back to DefaultQuiet.
func NewDebouncer(quiet time.Duration, fn func()) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer{quiet: quiet, fn: fn}
}

// Trigger restarts the quiet-period timer. Triggering after Stop is a no-op.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}

// Stop cancels any pending fire and prevents all future ones. Safe to call
// more than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
