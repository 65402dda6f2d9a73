//go:build linux

package led

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealLine drives an LED on a Linux GPIO character device line.
type RealLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealLine requests offset on chip (e.g. "gpiochip0") as an output,
// initially low.
func NewRealLine(chip string, offset int) (*RealLine, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}

	l, err := c.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("dfpong-status"))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request led line %d: %w", offset, err)
	}

	return &RealLine{chip: c, line: l}, nil
}

// Set drives the line high for on, low for off.
func (r *RealLine) Set(on bool) error {
	if err := r.line.SetValue(level(on)); err != nil {
		return fmt.Errorf("set led line: %w", err)
	}
	return nil
}

// Close turns the LED off and releases the line and chip.
func (r *RealLine) Close() error {
	return release(r.line, r.chip)
}
