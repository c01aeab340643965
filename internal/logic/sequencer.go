package logic

import (
	"sync/atomic"
	"time"
)

// Sequencer holds the current phase of the light.
//
// The phase lives in an atomic cell: it is written from the timer goroutine
// and must never be cached across firings. There is a single writer and no
// ordering against other variables, so plain atomic loads/stores suffice.
// Advance and Counts must only be called from that single writer.
type Sequencer struct {
	phase  atomic.Int32
	fired  atomic.Uint64
	counts Counts
}

// NewSequencer creates a Sequencer starting at RED.
func NewSequencer() *Sequencer {
	s := &Sequencer{}
	s.phase.Store(int32(PhaseRed))
	return s
}

// Current returns the phase the next firing will light.
func (s *Sequencer) Current() Phase {
	return Phase(s.phase.Load())
}

// Fired returns the number of completed firings.
func (s *Sequencer) Fired() uint64 {
	return s.fired.Load()
}

// Advance records that the current phase was lit at t and moves to the next one.
func (s *Sequencer) Advance(t time.Time) Transition {
	cur := s.Current()
	next := cur.Next()
	s.phase.Store(int32(next))
	n := s.fired.Add(1)

	switch cur {
	case PhaseRed:
		s.counts.Red++
	case PhaseYellow:
		s.counts.Yellow++
	case PhaseGreen:
		s.counts.Green++
	}

	return Transition{
		Timestamp: t,
		Phase:     cur,
		Next:      next,
		Sequence:  n,
	}
}

// Counts returns a copy of the per-phase activation counts.
func (s *Sequencer) Counts() Counts {
	return s.counts
}
