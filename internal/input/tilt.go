package input

import (
	"log/slog"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
)

// DefaultTiltThreshold is the forward/back tilt, in micro-g, needed to move
// the paddle. About 17 degrees.
const DefaultTiltThreshold = 300_000

// Accelerometer reads acceleration in micro-g on three axes.
type Accelerometer interface {
	ReadAcceleration() (x, y, z int32, err error)
}

// tiltDirection tips the board forward (negative y) for Up and back for Down.
func tiltDirection(y, threshold int32) protocol.Signal {
	switch {
	case y <= -threshold:
		return protocol.Up
	case y >= threshold:
		return protocol.Down
	default:
		return protocol.Neutral
	}
}

// Tilt steers the paddle by tilting the controller board.
type Tilt struct {
	accel     Accelerometer
	threshold int32
	failed    bool
}

// NewTilt returns a Source over accel. A non-positive threshold uses
// DefaultTiltThreshold.
func NewTilt(accel Accelerometer, threshold int32) *Tilt {
	if threshold <= 0 {
		threshold = DefaultTiltThreshold
	}
	return &Tilt{accel: accel, threshold: threshold}
}

// Direction reports Neutral while the sensor cannot be read.
func (t *Tilt) Direction() protocol.Signal {
	_, y, _, err := t.accel.ReadAcceleration()
	if err != nil {
		if !t.failed {
			slog.Warn("[INPUT] accelerometer read failed", "error", err)
			t.failed = true
		}
		return protocol.Neutral
	}
	t.failed = false
	return tiltDirection(y, t.threshold)
}

func (t *Tilt) Close() error { return nil }
