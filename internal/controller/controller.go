// Package controller runs the traffic light transition on each timer firing.
package controller

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/sweeney/traffic-light/internal/gpio"
	"github.com/sweeney/traffic-light/internal/logic"
	"github.com/sweeney/traffic-light/internal/mqtt"
	"github.com/sweeney/traffic-light/internal/status"
)

// Controller owns the sequencer and applies it to the outputs.
// Fire must only be called from one goroutine at a time (the timer's).
type Controller struct {
	seq       *logic.Sequencer
	out       gpio.Writer
	console   io.Writer
	publisher mqtt.Publisher
	tracker   *status.Tracker
	now       func() time.Time
}

// New creates a Controller. publisher and tracker may be nil.
func New(seq *logic.Sequencer, out gpio.Writer, console io.Writer, publisher mqtt.Publisher, tracker *status.Tracker, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		seq:       seq,
		out:       out,
		console:   console,
		publisher: publisher,
		tracker:   tracker,
		now:       now,
	}
}

// Fire performs one transition: clear every lamp, light the current phase,
// announce it, then advance. It always returns true so the timer keeps running.
func (c *Controller) Fire() bool {
	t := c.now()

	// Clear unconditionally so any earlier inconsistent state is corrected.
	for _, p := range logic.Phases {
		if err := c.out.Put(p, false); err != nil {
			log.Printf("gpio clear %s: %v", p, err)
		}
	}

	phase := c.seq.Current()
	if err := c.out.Put(phase, true); err != nil {
		log.Printf("gpio set %s: %v", phase, err)
	}
	fmt.Fprintln(c.console, phase.Message())

	tr := c.seq.Advance(t)

	if c.tracker != nil {
		c.tracker.RecordTransition(tr, logic.LampsFor(tr.Phase), c.seq.Counts())
	}
	if c.publisher != nil {
		if err := c.publisher.Publish(tr); err != nil {
			log.Printf("publish error: %v", err)
		}
	}

	return true
}
