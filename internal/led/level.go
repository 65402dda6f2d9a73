package led

import (
	"errors"
	"fmt"
	"io"
)

// level maps a logical LED state to a GPIO line value.
func level(on bool) int {
	if on {
		return 1
	}
	return 0
}

// outputLine is the part of a requested GPIO line that release needs.
type outputLine interface {
	SetValue(value int) error
	Close() error
}

// release drives line low, then closes line and chip. Every step runs
// even when an earlier one fails.
func release(line outputLine, chip io.Closer) error {
	var errs []error
	if err := line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("turn led off: %w", err))
	}
	if err := line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close led line: %w", err))
	}
	if err := chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close gpio chip: %w", err))
	}
	return errors.Join(errs...)
}
