package status

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/traffic-light/internal/logic"
)

var testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		PeriodMs:    3000,
		HeartbeatMs: 1000,
		Chip:        "gpiochip0",
		PinRed:      11,
		PinYellow:   12,
		PinGreen:    13,
	}
}

func TestNewTracker(t *testing.T) {
	tr := NewTracker(testStart, testConfig())

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(testStart) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, testStart)
	}
	if snap.Config.PeriodMs != 3000 {
		t.Errorf("Config.PeriodMs: got %d, want 3000", snap.Config.PeriodMs)
	}
	if snap.Transitions != 0 || snap.Heartbeats != 0 {
		t.Errorf("expected zero counters, got transitions=%d heartbeats=%d", snap.Transitions, snap.Heartbeats)
	}
	if snap.LitName() != "NONE" {
		t.Errorf("LitName before first firing: got %q, want NONE", snap.LitName())
	}
	if snap.Lamps.Active() != 0 {
		t.Error("expected every lamp off initially")
	}
}

func TestRecordTransition(t *testing.T) {
	tr := NewTracker(testStart, testConfig())
	at := testStart.Add(6 * time.Second)

	tr.RecordTransition(
		logic.Transition{Timestamp: at, Phase: logic.PhaseYellow, Next: logic.PhaseGreen, Sequence: 2},
		logic.LampsFor(logic.PhaseYellow),
		logic.Counts{Red: 1, Yellow: 1},
	)

	snap := tr.Snapshot()
	if snap.LitName() != "YELLOW" {
		t.Errorf("LitName: got %q, want YELLOW", snap.LitName())
	}
	if !snap.Lamps.Yellow || snap.Lamps.Active() != 1 {
		t.Errorf("unexpected lamps: %+v", snap.Lamps)
	}
	if snap.Transitions != 2 {
		t.Errorf("Transitions: got %d, want 2", snap.Transitions)
	}
	if !snap.LastChange.Equal(at) {
		t.Errorf("LastChange: got %v, want %v", snap.LastChange, at)
	}
	if snap.Counts != (logic.Counts{Red: 1, Yellow: 1}) {
		t.Errorf("Counts: got %+v", snap.Counts)
	}
}

func TestRecordHeartbeatAndMQTT(t *testing.T) {
	tr := NewTracker(testStart, testConfig())
	tr.RecordHeartbeat()
	tr.RecordHeartbeat()
	tr.SetMQTTConnected(true)

	snap := tr.Snapshot()
	if snap.Heartbeats != 2 {
		t.Errorf("Heartbeats: got %d, want 2", snap.Heartbeats)
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
}

func TestSnapshotUsesClock(t *testing.T) {
	tr := NewTracker(testStart, testConfig())
	tr.SetClock(func() time.Time { return testStart.Add(90 * time.Second) })

	snap := tr.Snapshot()
	if snap.Uptime() != 90*time.Second {
		t.Errorf("Uptime: got %v, want 90s", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(testStart, testConfig())
	snap := tr.Snapshot()
	tr.RecordHeartbeat()
	if snap.Heartbeats != 0 {
		t.Error("snapshot should not observe later updates")
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker(testStart, testConfig())
	seq := logic.NewSequencer()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			x := seq.Advance(testStart)
			tr.RecordTransition(x, logic.LampsFor(x.Phase), seq.Counts())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			tr.RecordHeartbeat()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if snap := tr.Snapshot(); snap.Transitions > 0 && snap.Lamps.Active() != 1 {
				t.Errorf("observed %d active lamps", snap.Lamps.Active())
				return
			}
		}
	}()
	wg.Wait()

	snap := tr.Snapshot()
	if snap.Transitions != 200 || snap.Heartbeats != 200 {
		t.Errorf("got transitions=%d heartbeats=%d, want 200/200", snap.Transitions, snap.Heartbeats)
	}
}

func TestFormatJSONBeforeFirstFiring(t *testing.T) {
	tr := NewTracker(testStart, testConfig())
	tr.SetClock(func() time.Time { return testStart.Add(2 * time.Second) })

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	s := sj.Status
	if s.Phase != "NONE" {
		t.Errorf("Phase: got %q, want NONE", s.Phase)
	}
	if s.Lamps != (LampsJSON{}) {
		t.Errorf("Lamps: expected all off, got %+v", s.Lamps)
	}
	if s.LastChange != "" {
		t.Errorf("LastChange: expected empty, got %q", s.LastChange)
	}
	if s.UptimeSeconds != 2 {
		t.Errorf("UptimeSeconds: got %d, want 2", s.UptimeSeconds)
	}
	if s.MQTT.Enabled {
		t.Error("MQTT should be disabled without broker")
	}
	if s.Event != "" || s.Reason != "" {
		t.Error("web JSON should not carry event/reason")
	}
	if s.Config.PinRed != 11 || s.Config.PinYellow != 12 || s.Config.PinGreen != 13 {
		t.Errorf("unexpected pins: %+v", s.Config)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	cfg := testConfig()
	cfg.Broker = "tcp://localhost:1883"
	tr := NewTracker(testStart, cfg)
	tr.SetClock(func() time.Time { return testStart.Add(10 * time.Second) })
	tr.RecordTransition(
		logic.Transition{Timestamp: testStart.Add(9 * time.Second), Phase: logic.PhaseGreen, Sequence: 3},
		logic.LampsFor(logic.PhaseGreen),
		logic.Counts{Red: 1, Yellow: 1, Green: 1},
	)

	data := FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM")
	if strings.Contains(string(data), "\n") {
		t.Error("status event should be compact JSON")
	}

	var sj StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	s := sj.Status
	if s.Event != "SHUTDOWN" || s.Reason != "SIGTERM" {
		t.Errorf("event/reason: got %q/%q", s.Event, s.Reason)
	}
	if s.Phase != "GREEN" || !s.Lamps.Green || s.Lamps.Red || s.Lamps.Yellow {
		t.Errorf("unexpected phase/lamps: %q %+v", s.Phase, s.Lamps)
	}
	if s.LastChange != "2026-01-01T00:00:09Z" {
		t.Errorf("LastChange: got %q", s.LastChange)
	}
	if !s.MQTT.Enabled || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("unexpected MQTT: %+v", s.MQTT)
	}
	if s.Counts != (CountsJSON{Red: 1, Yellow: 1, Green: 1}) {
		t.Errorf("unexpected counts: %+v", s.Counts)
	}
}
