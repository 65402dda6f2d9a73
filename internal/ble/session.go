package ble

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
)

// State is the connection lifecycle state of the single session.
type State int

const (
	// StateIdle means no central is connected; the peripheral advertises.
	StateIdle State = iota
	// StateHandshaking means a central is connected but has not echoed the handshake.
	StateHandshaking
	// StateReady means the handshake completed and gameplay data flows.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Session is the state of the one logical connection slot.
type Session struct {
	Connected            bool
	HandshakeComplete    bool
	ConnectionStartTime  time.Time
	LastSentValue        protocol.Signal
	PendingSend          bool
	LastNotificationTime time.Time

	// disconnectRequested is set once a handshake timeout asked the
	// transport to drop the link, so the request is not repeated every tick.
	disconnectRequested bool
	// generation increments on every connect and disconnect.
	generation uint64
}

// Clock returns the current time. Tests inject a fake.
type Clock func() time.Time

// Machine is the session state machine. Radio events arrive through the
// EventSink methods from any goroutine; RequestSend and
// CheckHandshakeTimeout are driven by the main loop. All Session mutation
// happens under mu.
type Machine struct {
	transport Transport
	now       Clock

	mu      sync.Mutex
	session Session
	// lastWrite survives session resets so the notification interval also
	// holds across a disconnect and reconnect.
	lastWrite time.Time
}

// Compile-time check that Machine receives transport events.
var _ EventSink = (*Machine)(nil)

// NewMachine creates an idle session bound to transport. A nil clock uses time.Now.
func NewMachine(transport Transport, now Clock) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{transport: transport, now: now}
}

// OnConnect moves the session into the handshaking state. A connect while
// already connected starts the handshake over.
func (m *Machine) OnConnect() {
	m.mu.Lock()
	gen := m.session.generation + 1
	m.session = Session{
		Connected:           true,
		HandshakeComplete:   false,
		ConnectionStartTime: m.now(),
		LastSentValue:       protocol.Handshake,
		PendingSend:         true,
		generation:          gen,
	}
	m.mu.Unlock()

	slog.Info("[BLE] central connected, awaiting handshake")
}

// OnDisconnect resets the session to its defaults and resumes advertising.
func (m *Machine) OnDisconnect() {
	m.mu.Lock()
	m.session = Session{generation: m.session.generation + 1}
	m.mu.Unlock()

	slog.Info("[BLE] central disconnected, waiting for connection")

	// Stop first so backends that ignore a redundant start still restart cleanly.
	if err := m.transport.StopAdvertising(); err != nil {
		slog.Debug("[BLE] stop advertising before restart", "error", err)
	}
	if err := m.transport.StartAdvertising(); err != nil {
		slog.Error("[BLE] failed to resume advertising", "error", err)
	}
}

// reset returns the session to its defaults without touching the radio.
// The notification interval still holds across it.
func (m *Machine) reset() {
	m.mu.Lock()
	m.session = Session{generation: m.session.generation + 1}
	m.mu.Unlock()
}

// OnCharacteristicWritten completes the handshake when the central echoes
// the handshake value. Every other value is ignored.
func (m *Machine) OnCharacteristicWritten(value byte) {
	if protocol.Signal(value) != protocol.Handshake {
		slog.Debug("[BLE] ignoring characteristic write", "value", value)
		return
	}

	m.mu.Lock()
	if !m.session.Connected || m.session.HandshakeComplete {
		m.mu.Unlock()
		return
	}
	m.session.HandshakeComplete = true
	m.mu.Unlock()

	slog.Info("[BLE] handshake complete, controller ready to play")
}

// RequestSend asks for direction to be transmitted. It is called every
// tick; the machine decides whether a notification goes out now. Until the
// handshake completes the handshake value is sent instead of direction. A
// pending change survives until a write succeeds and writes are never
// closer together than MinNotificationInterval.
func (m *Machine) RequestSend(direction int) {
	dir := protocol.Coerce(direction)

	m.mu.Lock()
	defer m.mu.Unlock()

	s := &m.session
	if !s.Connected {
		return
	}

	effective := dir
	if !s.HandshakeComplete {
		effective = protocol.Handshake
	}
	if effective != s.LastSentValue {
		s.PendingSend = true
	}
	if !s.PendingSend {
		return
	}

	now := m.now()
	if !m.lastWrite.IsZero() && now.Sub(m.lastWrite) < MinNotificationInterval {
		return
	}
	if !m.transport.IsCentralConnected() || !m.transport.IsCentralSubscribed() {
		return
	}

	// The write happens under mu so an event cannot reset the session
	// between choosing the value and recording it.
	if !m.transport.WriteCharacteristic(byte(effective)) {
		slog.Debug("[BLE] characteristic write rejected, retrying next tick", "value", effective)
		return
	}
	s.LastSentValue = effective
	s.LastNotificationTime = now
	s.PendingSend = false
	m.lastWrite = now

	if effective != protocol.Handshake {
		slog.Debug("[BLE] sent control", "value", effective)
	}
}

// CheckHandshakeTimeout asks the transport to drop a central that has not
// completed the handshake within HandshakeTimeout. It requests the
// disconnect once per connection and reports whether it did so on this call.
func (m *Machine) CheckHandshakeTimeout() bool {
	m.mu.Lock()
	s := &m.session
	if !s.Connected || s.HandshakeComplete || s.disconnectRequested {
		m.mu.Unlock()
		return false
	}
	now := m.now()
	if now.Sub(s.ConnectionStartTime) <= HandshakeTimeout {
		m.mu.Unlock()
		return false
	}
	s.disconnectRequested = true
	gen := s.generation
	m.mu.Unlock()

	slog.Warn("[BLE] handshake timeout, disconnecting", "timeout", HandshakeTimeout)

	// Called without mu: backends may deliver OnDisconnect synchronously.
	if err := m.transport.Disconnect(); err != nil {
		slog.Error("[BLE] forced disconnect failed", "error", err)
		// Re-arm after another full timeout window rather than every tick.
		m.mu.Lock()
		if m.session.generation == gen {
			m.session.disconnectRequested = false
			m.session.ConnectionStartTime = now
		}
		m.mu.Unlock()
	}
	return true
}

// IsConnected reports whether a central is connected.
func (m *Machine) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Connected
}

// IsReady reports whether the central is connected, subscribed and has
// completed the handshake.
func (m *Machine) IsReady() bool {
	m.mu.Lock()
	ready := m.session.Connected && m.session.HandshakeComplete
	m.mu.Unlock()
	return ready && m.transport.IsCentralSubscribed()
}

// State returns the lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case !m.session.Connected:
		return StateIdle
	case !m.session.HandshakeComplete:
		return StateHandshaking
	default:
		return StateReady
	}
}

// Snapshot returns a copy of the session.
func (m *Machine) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}
