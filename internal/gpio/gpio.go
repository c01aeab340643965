// Package gpio drives the traffic light LEDs with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"

	"github.com/sweeney/traffic-light/internal/logic"
)

// Writer sets the LED outputs.
type Writer interface {
	// Put drives the output for the given phase high (on) or low.
	Put(p logic.Phase, on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default line offsets on gpiochip0.
const (
	DefaultChip      = "gpiochip0"
	DefaultPinRed    = 11
	DefaultPinYellow = 12
	DefaultPinGreen  = 13
)

// Pins maps each lamp to its line offset.
type Pins struct {
	Red    int
	Yellow int
	Green  int
}

// DefaultPins returns the stock wiring.
func DefaultPins() Pins {
	return Pins{Red: DefaultPinRed, Yellow: DefaultPinYellow, Green: DefaultPinGreen}
}

// Offset returns the line offset for p.
func (p Pins) Offset(ph logic.Phase) int {
	switch ph {
	case logic.PhaseYellow:
		return p.Yellow
	case logic.PhaseGreen:
		return p.Green
	}
	return p.Red
}

// Validate checks that offsets are non-negative and distinct.
func (p Pins) Validate() error {
	seen := make(map[int]logic.Phase, len(logic.Phases))
	for _, ph := range logic.Phases {
		off := p.Offset(ph)
		if off < 0 {
			return fmt.Errorf("%s pin %d: negative offset", ph, off)
		}
		if other, ok := seen[off]; ok {
			return fmt.Errorf("%s pin %d already used by %s", ph, off, other)
		}
		seen[off] = ph
	}
	return nil
}
