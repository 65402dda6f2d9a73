// Package input turns player gestures into paddle directions. Every source
// is polled from the controller's main loop and must answer immediately.
package input

import (
	"sync"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
)

// Source yields the direction the player is currently asking for.
type Source interface {
	// Direction returns Up, Down or Neutral. It must not block.
	Direction() protocol.Signal

	// Close releases any device or hook held by the source.
	Close() error
}

// Fixed is a Source whose direction is set programmatically.
type Fixed struct {
	mu  sync.Mutex
	dir protocol.Signal
}

// NewFixed returns a Source that reports dir until Set is called.
func NewFixed(dir protocol.Signal) *Fixed {
	return &Fixed{dir: dir}
}

// Set changes the reported direction. Non-directions become Neutral.
func (f *Fixed) Set(dir protocol.Signal) {
	if !dir.IsDirection() {
		dir = protocol.Neutral
	}
	f.mu.Lock()
	f.dir = dir
	f.mu.Unlock()
}

func (f *Fixed) Direction() protocol.Signal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dir
}

func (f *Fixed) Close() error { return nil }

// levelDirection maps a loudness level to a direction: at or above up is
// Up, at or above down is Down, anything quieter is Neutral.
func levelDirection(level, up, down float64) protocol.Signal {
	switch {
	case level >= up:
		return protocol.Up
	case level >= down:
		return protocol.Down
	default:
		return protocol.Neutral
	}
}
