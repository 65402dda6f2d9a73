// Package mqtt publishes controller session status to an MQTT broker so a
// game host or dashboard can see which controllers are live.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble"
)

// Publisher publishes controller status.
type Publisher interface {
	// PublishStatus sends a status snapshot to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishStatus(s ble.Status) error

	// IsConnected reports whether the broker connection is up right now.
	IsConnected() bool

	// Close disconnects from the broker.
	Close() error
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Controller ControllerPayload `json:"controller"`
}

// ControllerPayload contains the controller status details.
type ControllerPayload struct {
	Number       int    `json:"number"`
	State        string `json:"state"`
	StrongSignal bool   `json:"strong_signal"`
	Timestamp    string `json:"timestamp"`
}

// StateOffline is published as the broker's last will.
const StateOffline = "offline"

// FormatPayload creates the JSON payload for a status snapshot.
func FormatPayload(s ble.Status) ([]byte, error) {
	return json.Marshal(Payload{
		Controller: ControllerPayload{
			Number:       s.ControllerNumber,
			State:        s.State.String(),
			StrongSignal: s.StrongSignal,
			Timestamp:    s.Time.UTC().Format(time.RFC3339),
		},
	})
}

// formatOffline creates the last-will payload. It carries no timestamp
// because the broker sends it on our behalf.
func formatOffline(number int) ([]byte, error) {
	return json.Marshal(Payload{
		Controller: ControllerPayload{Number: number, State: StateOffline},
	})
}
