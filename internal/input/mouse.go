//go:build !tinygo

package input

import (
	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
	"github.com/go-vgo/robotgo"
)

// classifyOffset maps a cursor height to a direction. The screen is split
// around its horizontal centre line; a band of deadZone (a fraction of the
// half-height) on either side of it is Neutral. Screen y grows downwards.
func classifyOffset(y, height int, deadZone float64) protocol.Signal {
	if height <= 0 {
		return protocol.Neutral
	}
	half := float64(height) / 2
	offset := (half - float64(y)) / half
	switch {
	case offset > deadZone:
		return protocol.Up
	case offset < -deadZone:
		return protocol.Down
	default:
		return protocol.Neutral
	}
}

// Mouse steers the paddle with the cursor: above the screen centre is Up,
// below is Down.
type Mouse struct {
	deadZone float64

	// Overridable for tests.
	location   func() (int, int)
	screenSize func() (int, int)
}

// NewMouse returns a cursor-driven Source.
func NewMouse(deadZone float64) *Mouse {
	return &Mouse{
		deadZone:   deadZone,
		location:   robotgo.Location,
		screenSize: robotgo.GetScreenSize,
	}
}

func (m *Mouse) Direction() protocol.Signal {
	_, y := m.location()
	_, h := m.screenSize()
	return classifyOffset(y, h, m.deadZone)
}

func (m *Mouse) Close() error { return nil }
