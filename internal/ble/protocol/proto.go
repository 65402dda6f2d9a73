// Package protocol implements the single-byte DF Pong movement protocol
// carried over the controller's GATT characteristic.
package protocol

import (
	"errors"
	"fmt"
)

// Signal is the value carried by the movement characteristic.
type Signal byte

const (
	Neutral   Signal = 0 // no movement
	Up        Signal = 1 // paddle moves up
	Down      Signal = 2 // paddle moves down
	Handshake Signal = 3 // server: awaiting handshake; client echoes it once to complete
)

// Advertisement manufacturer data. The two bytes are sent as the whole
// manufacturer-specific field, so a BLE stack that takes a company ID sees
// 0x01DF (little-endian 0xDF, 0x01) with an empty payload.
const (
	VendorTag       byte   = 0xDF
	ProtocolVersion byte   = 0x01
	CompanyID       uint16 = uint16(ProtocolVersion)<<8 | uint16(VendorTag)
)

// ManufacturerData returns the raw manufacturer-data bytes clients filter scan results on.
func ManufacturerData() []byte {
	return []byte{VendorTag, ProtocolVersion}
}

// ErrEmptyValue is returned by Decode for a zero-length characteristic write.
var ErrEmptyValue = errors.New("protocol: empty characteristic value")

func (s Signal) String() string {
	switch s {
	case Neutral:
		return "NEUTRAL"
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Handshake:
		return "HANDSHAKE"
	default:
		return fmt.Sprintf("Signal(%d)", byte(s))
	}
}

// IsDirection reports whether s may be requested by the application.
// Handshake is reserved for the protocol.
func (s Signal) IsDirection() bool {
	return s == Neutral || s == Up || s == Down
}

// Coerce maps an application-supplied direction onto a Signal.
// Anything outside {Neutral, Up, Down} becomes Neutral.
func Coerce(direction int) Signal {
	if direction < int(Neutral) || direction > int(Down) {
		return Neutral
	}
	return Signal(direction)
}

// Encode returns the wire form of s.
func Encode(s Signal) []byte {
	return []byte{byte(s)}
}

// Decode reads the signal from a characteristic write. Only the first
// byte is significant; trailing bytes are ignored.
func Decode(data []byte) (Signal, error) {
	if len(data) == 0 {
		return 0, ErrEmptyValue
	}
	return Signal(data[0]), nil
}
