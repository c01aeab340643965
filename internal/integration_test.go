package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/traffic-light/internal/controller"
	"github.com/sweeney/traffic-light/internal/gpio"
	"github.com/sweeney/traffic-light/internal/logic"
	"github.com/sweeney/traffic-light/internal/mqtt"
	"github.com/sweeney/traffic-light/internal/status"
	"github.com/sweeney/traffic-light/internal/timer"
)

// lockedBuffer serializes writes from the timer goroutine and the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := strings.TrimSuffix(b.buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// TestIntegrationFullCycle drives the timer, controller, fake GPIO, fake MQTT
// and tracker together through two and a third cycles.
func TestIntegrationFullCycle(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	period := 3 * time.Second

	out := gpio.NewFakeWriter()
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(start, status.Config{PeriodMs: period.Milliseconds()})
	var console lockedBuffer

	n := 0
	clock := func() time.Time {
		n++
		return start.Add(time.Duration(n) * period)
	}
	ctrl := controller.New(logic.NewSequencer(), out, &console, pub, tracker, clock)

	tick := make(chan time.Time)
	rt := timer.StartWithTicks(tick, ctrl.Fire)

	// All-off window before the first firing.
	if out.Lamps().Active() != 0 {
		t.Fatal("no lamp should be lit before the first firing")
	}

	const firings = 7
	for i := 0; i < firings; i++ {
		tick <- start.Add(time.Duration(i+1) * period)
	}
	rt.Stop()

	wantPhases := []logic.Phase{
		logic.PhaseRed, logic.PhaseYellow, logic.PhaseGreen,
		logic.PhaseRed, logic.PhaseYellow, logic.PhaseGreen,
		logic.PhaseRed,
	}
	wantLines := []string{
		"Sinal vermelho", "Sinal amarelo", "Sinal verde",
		"Sinal vermelho", "Sinal amarelo", "Sinal verde",
		"Sinal vermelho",
	}

	lines := console.Lines()
	if len(lines) != firings {
		t.Fatalf("expected %d console lines, got %d: %q", firings, len(lines), lines)
	}
	for i := range wantLines {
		if lines[i] != wantLines[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], wantLines[i])
		}
	}

	published := pub.Published()
	if len(published) != firings {
		t.Fatalf("expected %d transitions, got %d", firings, len(published))
	}
	for i, tr := range published {
		if tr.Phase != wantPhases[i] {
			t.Errorf("transition %d: got %s, want %s", i, tr.Phase, wantPhases[i])
		}
		if tr.Sequence != uint64(i+1) {
			t.Errorf("transition %d: sequence %d", i, tr.Sequence)
		}
	}

	var payload mqtt.Payload
	if err := json.Unmarshal(pub.Payloads[2], &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if payload.Signal.Phase != "GREEN" || payload.Signal.Message != "Sinal verde" || payload.Signal.Timestamp != "2026-01-01T12:00:09Z" {
		t.Errorf("unexpected third payload: %+v", payload.Signal)
	}

	// Each firing writes clear x3 then set x1; after every set exactly one lamp is lit.
	var lamps logic.Lamps
	for i, p := range out.Puts() {
		lamps.Set(p.Phase, p.On)
		if i%4 == 3 && lamps.Active() != 1 {
			t.Errorf("after firing %d: %d lamps lit", i/4+1, lamps.Active())
		}
	}
	if out.Lamps() != logic.LampsFor(logic.PhaseRed) {
		t.Errorf("final lamps: got %+v, want RED only", out.Lamps())
	}

	snap := tracker.Snapshot()
	if snap.Transitions != firings || snap.LitName() != "RED" {
		t.Errorf("tracker: transitions=%d lit=%s", snap.Transitions, snap.LitName())
	}
	if snap.Counts != (logic.Counts{Red: 3, Yellow: 2, Green: 2}) {
		t.Errorf("tracker counts: %+v", snap.Counts)
	}
}

// TestIntegrationHeartbeatIndependence interleaves transitions with
// heartbeats on the shared tracker and console.
func TestIntegrationHeartbeatIndependence(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	out := gpio.NewFakeWriter()
	tracker := status.NewTracker(start, status.Config{})
	var console lockedBuffer
	ctrl := controller.New(logic.NewSequencer(), out, &console, nil, tracker, nil)

	tick := make(chan time.Time)
	rt := timer.StartWithTicks(tick, ctrl.Fire)

	// 9 seconds: heartbeat each second, transition every third.
	for sec := 0; sec < 9; sec++ {
		console.Write([]byte("Semáforo funcionando...\n"))
		tracker.RecordHeartbeat()
		if sec%3 == 2 {
			tick <- start.Add(time.Duration(sec+1) * time.Second)
		}
	}
	rt.Stop()

	heartbeats, signals := 0, 0
	for _, l := range console.Lines() {
		switch {
		case l == "Semáforo funcionando...":
			heartbeats++
		case strings.HasPrefix(l, "Sinal "):
			signals++
		default:
			t.Errorf("unexpected line %q", l)
		}
	}
	if heartbeats != 9 || signals != 3 {
		t.Errorf("got heartbeats=%d signals=%d, want 9/3", heartbeats, signals)
	}

	snap := tracker.Snapshot()
	if snap.Heartbeats != 9 || snap.Transitions != 3 {
		t.Errorf("tracker: heartbeats=%d transitions=%d", snap.Heartbeats, snap.Transitions)
	}
}
