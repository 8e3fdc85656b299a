// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package watchdog provides a single-shot timer that bounds a blocking
// operation.
package watchdog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

type Watchdog struct {
	clock clock.Clock

	mu    sync.Mutex
	timer *clock.Timer

	arms, fires atomic.Uint64
}

// New returns a watchdog driven by the given clock; nil is the wall clock.
func New(clk clock.Clock) *Watchdog {
	if clk == nil {
		clk = clock.New()
	}
	return &Watchdog{clock: clk}
}

// Start arms the watchdog to call f, in its own goroutine, once the budget
// elapses. A previously armed watchdog is cancelled first.
func (w *Watchdog) Start(budget time.Duration, f func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.arms.Add(1)
	w.timer = w.clock.AfterFunc(budget, func() {
		w.fires.Add(1)
		f()
	})
}

// Cancel disarms the watchdog. It returns false if it wasn't armed or has
// already fired; in the latter case the callback may still be running.
func (w *Watchdog) Cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		return false
	}
	stopped := w.timer.Stop()
	w.timer = nil
	return stopped
}

// Arms returns the number of times the watchdog was started.
func (w *Watchdog) Arms() uint64 { return w.arms.Load() }

// Fires returns the number of expired budgets.
func (w *Watchdog) Fires() uint64 { return w.fires.Load() }
