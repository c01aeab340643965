// Package status provides a thread-safe status tracker for the traffic-light daemon.
// It is read by HTTP handlers and rendered into MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/traffic-light/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PeriodMs    int64
	HeartbeatMs int64
	Chip        string
	PinRed      int
	PinYellow   int
	PinGreen    int
	Broker      string // empty = MQTT disabled
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	// Lit is the phase shown by the last firing; only meaningful when Transitions > 0.
	Lit           logic.Phase
	Lamps         logic.Lamps
	Transitions   uint64
	LastChange    time.Time
	Counts        logic.Counts
	Heartbeats    uint64
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// LitName returns the wire name of the lit phase, or "NONE" before the first firing.
func (s Snapshot) LitName() string {
	if s.Transitions == 0 {
		return "NONE"
	}
	return s.Lit.String()
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// SetClock replaces the clock used to stamp snapshots. Intended for tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// RecordTransition stores the outcome of a firing.
// Called from the signal handler after the lamps were written.
func (t *Tracker) RecordTransition(tr logic.Transition, lamps logic.Lamps, counts logic.Counts) {
	t.mu.Lock()
	t.snap.Lit = tr.Phase
	t.snap.Lamps = lamps
	t.snap.Transitions = tr.Sequence
	t.snap.LastChange = tr.Timestamp
	t.snap.Counts = counts
	t.mu.Unlock()
}

// RecordHeartbeat bumps the heartbeat counter.
func (t *Tracker) RecordHeartbeat() {
	t.mu.Lock()
	t.snap.Heartbeats++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	now := t.now
	t.mu.RUnlock()
	s.Now = now()
	return s
}
