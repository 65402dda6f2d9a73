package ble

import (
	"log/slog"
	"sync"
	"time"
)

// Blink periods of the status LED.
const (
	BlinkFast = 100 * time.Millisecond // connected, handshaking
	BlinkSlow = 500 * time.Millisecond // disconnected, advertising
)

// NextLED applies the blink policy: solid on when ready, fast blink while
// handshaking, slow blink while disconnected. It returns the new LED level
// and the time of the last toggle.
func NextLED(connected, handshakeComplete bool, now, lastToggle time.Time, on bool) (bool, time.Time) {
	if connected && handshakeComplete {
		return true, lastToggle
	}
	period := BlinkSlow
	if connected {
		period = BlinkFast
	}
	if now.Sub(lastToggle) >= period {
		return !on, now
	}
	return on, lastToggle
}

// LED is a single status light.
type LED interface {
	Set(on bool) error
}

// StatusIndicator drives an optional LED from the session state.
type StatusIndicator struct {
	led LED

	mu         sync.Mutex
	on         bool
	lastToggle time.Time
}

// NewStatusIndicator returns an indicator for led. A nil led makes every
// call a no-op.
func NewStatusIndicator(led LED) *StatusIndicator {
	return &StatusIndicator{led: led}
}

// Update re-evaluates the blink policy at now.
func (si *StatusIndicator) Update(connected, handshakeComplete bool, now time.Time) {
	if si == nil || si.led == nil {
		return
	}
	si.mu.Lock()
	defer si.mu.Unlock()

	on, last := NextLED(connected, handshakeComplete, now, si.lastToggle, si.on)
	si.lastToggle = last
	if on != si.on {
		si.set(on)
	}
}

// Force drives the LED to on immediately, outside the blink policy.
func (si *StatusIndicator) Force(on bool) {
	if si == nil || si.led == nil {
		return
	}
	si.mu.Lock()
	defer si.mu.Unlock()
	si.set(on)
}

// On reports the last level written to the LED.
func (si *StatusIndicator) On() bool {
	if si == nil {
		return false
	}
	si.mu.Lock()
	defer si.mu.Unlock()
	return si.on
}

// set writes the level (caller must hold mu).
func (si *StatusIndicator) set(on bool) {
	si.on = on
	if err := si.led.Set(on); err != nil {
		slog.Debug("[LED] set failed", "error", err)
	}
}
