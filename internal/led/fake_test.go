package led

import (
	"errors"
	"testing"
)

// Compile-time checks that both drivers satisfy Line.
var (
	_ Line = (*FakeLine)(nil)
	_ Line = (*RealLine)(nil)
)

func TestFakeLineRecordsLevels(t *testing.T) {
	f := NewFakeLine()
	if f.On() {
		t.Error("should be off initially")
	}

	for _, on := range []bool{true, false, true, true} {
		if err := f.Set(on); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if !f.On() {
		t.Error("should be on after last Set(true)")
	}
	if got := len(f.Levels); got != 4 {
		t.Errorf("recorded %d levels, want 4", got)
	}
	if got := f.Toggles(); got != 3 {
		t.Errorf("Toggles() = %d, want 3", got)
	}
}

func TestFakeLineError(t *testing.T) {
	f := NewFakeLine()
	f.SetError = errors.New("simulated error")

	if err := f.Set(true); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Levels) != 0 {
		t.Error("failed Set should not be recorded")
	}
}

func TestFakeLineClose(t *testing.T) {
	f := NewFakeLine()
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestLevel(t *testing.T) {
	if level(true) != 1 || level(false) != 0 {
		t.Errorf("level(true), level(false) = %d, %d, want 1, 0", level(true), level(false))
	}
}
