package session

import (
	"sync"
	"time"
)

// watchdog schedules a single cancellable deadline callback. It has two
// states: idle (no timer) and armed (one outstanding timer). Arming always
// cancels the previous timer first, so at most one callback is ever pending.
type watchdog struct {
	mu    sync.Mutex
	timer *time.Timer
}

// arm schedules fn after delay, replacing any pending schedule. A delay
// clamped to zero fires on the next scheduling opportunity rather than being
// skipped. Firing transitions the watchdog back to idle.
func (w *watchdog) arm(delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		w.mu.Lock()
		if w.timer == t {
			w.timer = nil
		}
		w.mu.Unlock()
		fn()
	})
	w.timer = t
}

// cancel stops any pending schedule and returns to idle.
func (w *watchdog) cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
