package ble

import (
	"errors"
	"fmt"
)

// Controller numbers assignable by an operator.
const (
	MinControllerNumber = 1
	MaxControllerNumber = 242

	suffixOffset = 13
)

// ErrConfiguration is returned when the controller is configured with an
// unusable controller number.
var ErrConfiguration = errors.New("ble: invalid configuration")

// Identity is the per-controller pair of GATT identifiers.
type Identity struct {
	Number             int
	ServiceUUID        string
	CharacteristicUUID string
}

// DeriveIdentity computes the service and characteristic UUIDs for a
// controller number. Controller 1 gets suffix 0e, controller 242 gets ff.
func DeriveIdentity(number int) (Identity, error) {
	if number < MinControllerNumber || number > MaxControllerNumber {
		return Identity{}, fmt.Errorf("%w: controller number %d outside [%d,%d]",
			ErrConfiguration, number, MinControllerNumber, MaxControllerNumber)
	}
	suffix := suffixOffset + number
	return Identity{
		Number:             number,
		ServiceUUID:        fmt.Sprintf("%s%02x", ServiceUUIDBase, suffix),
		CharacteristicUUID: fmt.Sprintf("%s%02x", CharacteristicUUIDBase, suffix),
	}, nil
}

// DefaultDeviceName is the advertised name used when none is configured.
func DefaultDeviceName(number int) string {
	return fmt.Sprintf("DFPONG-%d", number)
}
