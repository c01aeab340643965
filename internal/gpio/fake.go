package gpio

import (
	"sync"

	"github.com/sweeney/traffic-light/internal/logic"
)

// FakeWriter is a test double that records output writes.
// Safe for concurrent use so tests can inspect it while a timer goroutine writes.
type FakeWriter struct {
	mu sync.Mutex

	lamps  logic.Lamps
	puts   []Put
	closed bool

	// PutError, if set, will be returned by Put (the lamp state is left unchanged).
	PutError error
}

// Put records a single write.
type Put struct {
	Phase logic.Phase
	On    bool
}

// NewFakeWriter creates a FakeWriter with every lamp off.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Put records the write and updates the lamp state.
func (f *FakeWriter) Put(p logic.Phase, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PutError != nil {
		return f.PutError
	}
	f.puts = append(f.puts, Put{Phase: p, On: on})
	f.lamps.Set(p, on)
	return nil
}

// Close marks the writer as closed and turns every lamp off.
func (f *FakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.lamps = logic.Lamps{}
	return nil
}

// Lamps returns the current lamp state.
func (f *FakeWriter) Lamps() logic.Lamps {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lamps
}

// SetLamps forces a lamp state, e.g. to simulate an inconsistent start.
func (f *FakeWriter) SetLamps(l logic.Lamps) {
	f.mu.Lock()
	f.lamps = l
	f.mu.Unlock()
}

// Puts returns a copy of every recorded write.
func (f *FakeWriter) Puts() []Put {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Put(nil), f.puts...)
}

// Closed reports whether Close was called.
func (f *FakeWriter) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Reset clears recorded writes and turns every lamp off.
func (f *FakeWriter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lamps = logic.Lamps{}
	f.puts = nil
	f.closed = false
	f.PutError = nil
}
