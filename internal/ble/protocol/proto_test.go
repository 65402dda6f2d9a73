package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestSignalValues(t *testing.T) {
	// Wire values are shared with the game client and must never move.
	tests := []struct {
		sig  Signal
		want byte
	}{
		{Neutral, 0},
		{Up, 1},
		{Down, 2},
		{Handshake, 3},
	}
	for _, tt := range tests {
		if byte(tt.sig) != tt.want {
			t.Errorf("%s = %d, want %d", tt.sig, byte(tt.sig), tt.want)
		}
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   int
		want Signal
	}{
		{0, Neutral},
		{1, Up},
		{2, Down},
		{3, Neutral}, // handshake is never an application direction
		{-1, Neutral},
		{42, Neutral},
	}
	for _, tt := range tests {
		if got := Coerce(tt.in); got != tt.want {
			t.Errorf("Coerce(%d) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestIsDirection(t *testing.T) {
	for _, s := range []Signal{Neutral, Up, Down} {
		if !s.IsDirection() {
			t.Errorf("%s.IsDirection() = false, want true", s)
		}
	}
	if Handshake.IsDirection() {
		t.Error("Handshake.IsDirection() = true, want false")
	}
}

func TestEncodeDecode(t *testing.T) {
	if got := Encode(Down); !bytes.Equal(got, []byte{0x02}) {
		t.Errorf("Encode(Down) = %x, want 02", got)
	}

	got, err := Decode([]byte{0x03, 0xFF})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != Handshake {
		t.Errorf("Decode() = %s, want HANDSHAKE", got)
	}
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode(nil)
	if !errors.Is(err, ErrEmptyValue) {
		t.Errorf("Decode(nil) error = %v, want ErrEmptyValue", err)
	}
}

func TestManufacturerData(t *testing.T) {
	if got := ManufacturerData(); !bytes.Equal(got, []byte{0xDF, 0x01}) {
		t.Errorf("ManufacturerData() = %x, want df01", got)
	}
	if CompanyID != 0x01DF {
		t.Errorf("CompanyID = %#04x, want 0x01df", CompanyID)
	}
}

func TestSignalString(t *testing.T) {
	if got := Signal(9).String(); got != "Signal(9)" {
		t.Errorf("String() = %q, want %q", got, "Signal(9)")
	}
}
