// Package timer provides a repeating timer that re-arms after every callback
// until the callback asks it to stop.
package timer

import (
	"errors"
	"sync"
	"time"
)

// ErrInvalidPeriod is returned by Start for a non-positive period.
var ErrInvalidPeriod = errors.New("timer: period must be positive")

// Callback runs on every expiry. Returning false cancels the timer.
type Callback func() bool

// Repeating calls a Callback on each tick from its own goroutine.
// Callbacks never overlap.
type Repeating struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start registers cb to run every period, measured from now.
func Start(period time.Duration, cb Callback) (*Repeating, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	ticker := time.NewTicker(period)
	r := newRepeating()
	go func() {
		defer ticker.Stop()
		r.run(ticker.C, cb)
	}()
	return r, nil
}

// StartWithTicks runs cb on every value received from tick. Useful for tests.
func StartWithTicks(tick <-chan time.Time, cb Callback) *Repeating {
	r := newRepeating()
	go r.run(tick, cb)
	return r
}

func newRepeating() *Repeating {
	return &Repeating{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (r *Repeating) run(tick <-chan time.Time, cb Callback) {
	defer close(r.done)
	for {
		select {
		case <-r.stop:
			return
		case _, ok := <-tick:
			if !ok {
				return
			}
			if !cb() {
				return
			}
		}
	}
}

// Stop cancels the timer and waits for an in-flight callback to finish.
// Safe to call more than once.
func (r *Repeating) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

// Done is closed once the timer goroutine has exited.
func (r *Repeating) Done() <-chan struct{} {
	return r.done
}
