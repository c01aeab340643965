// Package logic contains the pure traffic light state machine.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Phase is the color currently shown by the light.
type Phase int32

const (
	PhaseRed Phase = iota
	PhaseYellow
	PhaseGreen
)

// Phases lists every phase in cycle order.
var Phases = []Phase{PhaseRed, PhaseYellow, PhaseGreen}

// String returns the wire name of the phase (e.g. "RED").
func (p Phase) String() string {
	switch p {
	case PhaseRed:
		return "RED"
	case PhaseYellow:
		return "YELLOW"
	case PhaseGreen:
		return "GREEN"
	}
	return "UNKNOWN"
}

// Message returns the console status line announcing the phase.
func (p Phase) Message() string {
	switch p {
	case PhaseRed:
		return "Sinal vermelho"
	case PhaseYellow:
		return "Sinal amarelo"
	case PhaseGreen:
		return "Sinal verde"
	}
	return ""
}

// Next returns the phase that follows p: RED -> YELLOW -> GREEN -> RED.
func (p Phase) Next() Phase {
	return (p + 1) % Phase(len(Phases))
}

// Valid reports whether p is one of the three phases.
func (p Phase) Valid() bool {
	return p >= PhaseRed && p <= PhaseGreen
}

// Lamps is the on/off state of the three outputs.
type Lamps struct {
	Red    bool
	Yellow bool
	Green  bool
}

// LampsFor returns the pattern with only p's lamp lit.
func LampsFor(p Phase) Lamps {
	var l Lamps
	l.Set(p, true)
	return l
}

// Set changes the lamp for p.
func (l *Lamps) Set(p Phase, on bool) {
	switch p {
	case PhaseRed:
		l.Red = on
	case PhaseYellow:
		l.Yellow = on
	case PhaseGreen:
		l.Green = on
	}
}

// Get returns the lamp for p.
func (l Lamps) Get(p Phase) bool {
	switch p {
	case PhaseRed:
		return l.Red
	case PhaseYellow:
		return l.Yellow
	case PhaseGreen:
		return l.Green
	}
	return false
}

// Active returns how many lamps are lit.
func (l Lamps) Active() int {
	n := 0
	for _, p := range Phases {
		if l.Get(p) {
			n++
		}
	}
	return n
}

// Transition describes one firing of the signal handler.
type Transition struct {
	Timestamp time.Time
	// Phase is the phase that was lit by this firing.
	Phase Phase
	// Next is the phase the following firing will light.
	Next Phase
	// Sequence is the 1-based firing number.
	Sequence uint64
}

// Counts tracks how many times each phase was lit since startup.
type Counts struct {
	Red    int
	Yellow int
	Green  int
}
