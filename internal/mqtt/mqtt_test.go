package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble"
)

func TestFormatPayload(t *testing.T) {
	s := ble.Status{
		ControllerNumber: 3,
		State:            ble.StateReady,
		StrongSignal:     true,
		Time:             time.Date(2026, 2, 2, 22, 18, 12, 0, time.FixedZone("CET", 3600)),
	}

	payload, err := FormatPayload(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Controller.Number != 3 {
		t.Errorf("unexpected number: %d", parsed.Controller.Number)
	}
	if parsed.Controller.State != "ready" {
		t.Errorf("unexpected state: %s", parsed.Controller.State)
	}
	if !parsed.Controller.StrongSignal {
		t.Error("strong_signal should be true")
	}
	if parsed.Controller.Timestamp != "2026-02-02T21:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Controller.Timestamp)
	}
}

func TestFormatPayloadStates(t *testing.T) {
	for state, want := range map[ble.State]string{
		ble.StateIdle:        "idle",
		ble.StateHandshaking: "handshaking",
		ble.StateReady:       "ready",
	} {
		payload, err := FormatPayload(ble.Status{ControllerNumber: 1, State: state})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var parsed Payload
		if err := json.Unmarshal(payload, &parsed); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if parsed.Controller.State != want {
			t.Errorf("state %d: got %q, want %q", state, parsed.Controller.State, want)
		}
	}
}

func TestFormatOffline(t *testing.T) {
	payload, err := formatOffline(12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"controller":{"number":12,"state":"offline","strong_signal":false,"timestamp":""}}`
	if string(payload) != want {
		t.Errorf("formatOffline() = %s, want %s", payload, want)
	}
}
