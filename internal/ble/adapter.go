// Package ble implements the peripheral side of a DF Pong controller: it
// advertises a per-controller service, accepts one central, gates gameplay
// data behind an application-level handshake and rate-limits notifications.
package ble

import (
	"encoding/binary"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
)

// Base identifiers. The game client matches controllers by the two hex
// digits appended to these prefixes, so they must not change.
const (
	ServiceUUIDBase        = "19b10010-e8f2-537e-4f6c-d104768a12"
	CharacteristicUUIDBase = "19b10011-e8f2-537e-4f6c-d104768a12"
)

// Timing policy.
const (
	MinNotificationInterval = 20 * time.Millisecond
	HandshakeTimeout        = 5000 * time.Millisecond
	AdvertisingInterval     = 100 * time.Millisecond
)

// ApproximateRSSI is reported by backends that cannot read the link RSSI
// while a central is connected.
const ApproximateRSSI = -50

// EventSink receives radio-stack events. Implementations must tolerate
// being called from a goroutine other than the one driving the main loop.
type EventSink interface {
	OnConnect()
	OnDisconnect()
	OnCharacteristicWritten(value byte)
}

// Advertisement describes what the peripheral exposes.
type Advertisement struct {
	Identity         Identity
	LocalName        string
	ManufacturerData []byte
}

// NewAdvertisement builds the advertisement for id.
func NewAdvertisement(id Identity, localName string) Advertisement {
	return Advertisement{
		Identity:         id,
		LocalName:        localName,
		ManufacturerData: protocol.ManufacturerData(),
	}
}

// ManufacturerFields splits ManufacturerData into the little-endian
// company identifier and the remaining payload, the shape most stacks
// take it in.
func (a Advertisement) ManufacturerFields() (companyID uint16, payload []byte) {
	switch len(a.ManufacturerData) {
	case 0:
		return 0, nil
	case 1:
		return uint16(a.ManufacturerData[0]), nil
	}
	return binary.LittleEndian.Uint16(a.ManufacturerData), a.ManufacturerData[2:]
}

// Transport abstracts the BLE radio stack for the session state machine.
type Transport interface {
	// Enable powers on the radio. It may fail transiently; callers retry.
	Enable() error
	// Configure registers the GATT service and characteristic and prepares
	// the advertisement. It is called once, after Enable.
	Configure(adv Advertisement) error
	// StartAdvertising begins (or resumes) connectable advertising.
	StartAdvertising() error
	// StopAdvertising stops advertising. Stopping while idle is not an error.
	StopAdvertising() error
	// Disconnect actively terminates the current connection, if any.
	Disconnect() error
	// IsCentralConnected reports whether a central holds the connection slot.
	IsCentralConnected() bool
	// IsCentralSubscribed reports whether the central subscribed to
	// notifications. Backends without subscription state report true
	// whenever a central is connected.
	IsCentralSubscribed() bool
	// WriteCharacteristic sets the characteristic value and notifies the
	// central. It reports whether the radio accepted the write and must not
	// call back into the EventSink synchronously.
	WriteCharacteristic(value byte) bool
	// RSSI returns the signal strength of the connected central in dBm.
	RSSI() (int, error)
	// SetEventSink installs the receiver of connect, disconnect and write events.
	SetEventSink(sink EventSink)
}

// Poller is implemented by transports whose radio stack only makes
// progress when polled from the main loop.
type Poller interface {
	Poll()
}
