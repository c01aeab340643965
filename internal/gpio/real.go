//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/traffic-light/internal/logic"
)

// Consumer is the label shown for our lines in gpioinfo.
const Consumer = "traffic-light"

// RealWriter drives actual hardware using Linux GPIO character device.
type RealWriter struct {
	chip  *gpiocdev.Chip
	lines map[logic.Phase]*gpiocdev.Line
}

// NewRealWriter requests the three lamp lines as outputs, initially low.
func NewRealWriter(chipName string, pins Pins) (*RealWriter, error) {
	if err := pins.Validate(); err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	w := &RealWriter{
		chip:  chip,
		lines: make(map[logic.Phase]*gpiocdev.Line, len(logic.Phases)),
	}
	for _, p := range logic.Phases {
		line, err := chip.RequestLine(pins.Offset(p), gpiocdev.AsOutput(0))
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", p, pins.Offset(p), err)
		}
		w.lines[p] = line
	}

	return w, nil
}

// Put drives the lamp line for p.
func (w *RealWriter) Put(p logic.Phase, on bool) error {
	line, ok := w.lines[p]
	if !ok {
		return fmt.Errorf("no line for phase %s", p)
	}
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set %s pin: %w", p, err)
	}
	return nil
}

// Close turns every lamp off and releases the lines.
// Lines are reconfigured as inputs (the boot default) before release so
// nothing stays driven after the daemon exits.
func (w *RealWriter) Close() error {
	var errs []error

	for _, p := range logic.Phases {
		line, ok := w.lines[p]
		if !ok {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s pin: %w", p, err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", p, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", p, err))
		}
		delete(w.lines, p)
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		w.chip = nil
	}

	return errors.Join(errs...)
}
