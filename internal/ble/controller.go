package ble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
)

// ErrTransportInit is returned by Start when the radio could not be
// enabled within the configured number of attempts.
var ErrTransportInit = errors.New("ble: transport failed to initialize")

// DefaultTickInterval is the main-loop cadence used by Run. It must stay
// well below MinNotificationInterval.
const DefaultTickInterval = 5 * time.Millisecond

// ControllerOptions configures the controller. Set everything before Start.
type ControllerOptions struct {
	ControllerNumber int
	StatusLED        LED           // optional
	Debug            bool          // log start-up details at info level
	RSSIThreshold    int           // dBm, for HasStrongSignal
	InitRetries      int           // attempts to enable the radio
	InitRetryDelay   time.Duration // fixed delay between attempts
	Clock            Clock         // nil uses time.Now
	Observer         StateObserver // optional
}

// DefaultControllerOptions returns sensible defaults. ControllerNumber
// still has to be set.
func DefaultControllerOptions() ControllerOptions {
	return ControllerOptions{
		RSSIThreshold:  DefaultRSSIThreshold,
		InitRetries:    3,
		InitRetryDelay: 500 * time.Millisecond,
	}
}

// Status is reported to a StateObserver whenever the session state changes.
type Status struct {
	ControllerNumber int
	State            State
	StrongSignal     bool
	Time             time.Time
}

// StateObserver is notified from Tick. It must not block.
type StateObserver interface {
	ObserveState(s Status)
}

// DirectionSource supplies the direction requested on every loop tick.
type DirectionSource interface {
	Direction() protocol.Signal
}

// Controller is the application-facing DF Pong controller. It owns the
// session state machine, the status LED and the signal monitor, and is the
// event sink of its transport.
type Controller struct {
	transport Transport
	machine   *Machine
	indicator *StatusIndicator
	monitor   *SignalMonitor
	now       Clock

	mu         sync.Mutex
	opts       ControllerOptions
	identity   Identity
	deviceName string
	started    bool
	lastState  State
}

// Compile-time check that Controller receives transport events.
var _ EventSink = (*Controller)(nil)

// NewController creates a controller driving transport.
func NewController(transport Transport, opts ControllerOptions) *Controller {
	if opts.InitRetries <= 0 {
		opts.InitRetries = 3
	}
	if opts.InitRetryDelay < 0 {
		opts.InitRetryDelay = 0
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Controller{
		transport: transport,
		machine:   NewMachine(transport, now),
		indicator: NewStatusIndicator(opts.StatusLED),
		monitor:   NewSignalMonitor(transport, opts.RSSIThreshold),
		now:       now,
		opts:      opts,
	}
}

// SetControllerNumber changes the controller number. It has no effect
// once Start has succeeded.
func (c *Controller) SetControllerNumber(number int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		slog.Warn("[BLE] controller number cannot change after start", "number", number)
		return
	}
	c.opts.ControllerNumber = number
	c.debug("[BLE] controller number set", "number", number)
}

// Start validates the configuration, enables the radio, registers the
// service and begins advertising. An empty deviceName advertises as
// DFPONG-<number>. A failed Start leaves nothing behind and may be retried;
// Start on a started controller is a no-op.
func (c *Controller) Start(deviceName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	id, err := DeriveIdentity(c.opts.ControllerNumber)
	if err != nil {
		slog.Error("[BLE] set a controller number between 1 and 242 before starting", "number", c.opts.ControllerNumber)
		return err
	}
	if deviceName == "" {
		deviceName = DefaultDeviceName(id.Number)
	}

	c.debug("[BLE] initializing controller", "number", id.Number)
	c.debug("[BLE] generated identifiers", "service", id.ServiceUUID, "characteristic", id.CharacteristicUUID)

	if err := c.enableWithRetry(); err != nil {
		return err
	}

	// Clean slate: nothing left advertising or connected from a previous run.
	if err := c.transport.StopAdvertising(); err != nil {
		slog.Debug("[BLE] stop advertising during reset", "error", err)
	}
	if c.transport.IsCentralConnected() {
		if err := c.transport.Disconnect(); err != nil {
			slog.Debug("[BLE] disconnect during reset", "error", err)
		}
	}

	// A session left over from before Close never saw its disconnect.
	c.machine.reset()

	if err := c.transport.Configure(NewAdvertisement(id, deviceName)); err != nil {
		return fmt.Errorf("ble: configure service: %w", err)
	}
	c.transport.SetEventSink(c)
	if err := c.transport.StartAdvertising(); err != nil {
		c.transport.SetEventSink(nil)
		return fmt.Errorf("ble: start advertising: %w", err)
	}

	c.identity = id
	c.deviceName = deviceName
	c.started = true
	c.lastState = StateIdle

	slog.Info("[BLE] controller ready, waiting for connection",
		"number", id.Number, "name", deviceName, "service", id.ServiceUUID)
	return nil
}

// enableWithRetry powers on the radio with bounded retries (caller must hold mu).
func (c *Controller) enableWithRetry() error {
	var lastErr error
	for attempt := 1; attempt <= c.opts.InitRetries; attempt++ {
		lastErr = c.transport.Enable()
		if lastErr == nil {
			return nil
		}
		slog.Warn("[BLE] radio init failed", "attempt", attempt, "error", lastErr)
		if attempt < c.opts.InitRetries {
			time.Sleep(c.opts.InitRetryDelay)
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrTransportInit, c.opts.InitRetries, lastErr)
}

// Tick runs one iteration of housekeeping: polls the transport when it
// needs polling, updates the status LED, enforces the handshake timeout
// and reports state changes. Call it at a steady cadence below 20ms.
func (c *Controller) Tick() {
	if !c.isStarted() {
		return
	}
	if p, ok := c.transport.(Poller); ok {
		p.Poll()
	}

	snap := c.machine.Snapshot()
	c.indicator.Update(snap.Connected, snap.HandshakeComplete, c.now())
	c.machine.CheckHandshakeTimeout()
	c.reportState()
}

// reportState notifies the observer when the state changed since the last tick.
func (c *Controller) reportState() {
	state := c.machine.State()

	c.mu.Lock()
	changed := state != c.lastState
	c.lastState = state
	observer := c.opts.Observer
	number := c.identity.Number
	c.mu.Unlock()

	if !changed || observer == nil {
		return
	}
	observer.ObserveState(Status{
		ControllerNumber: number,
		State:            state,
		StrongSignal:     c.monitor.Strong(),
		Time:             c.now(),
	})
}

// SendControl requests direction (Up, Down or Neutral; anything else is
// treated as Neutral). The notification goes out when the throttle allows.
func (c *Controller) SendControl(direction int) {
	if !c.isStarted() {
		return
	}
	c.machine.RequestSend(direction)
}

// Run drives Tick and SendControl from src every interval until ctx is done.
func (c *Controller) Run(ctx context.Context, src DirectionSource, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Tick()
			c.SendControl(int(src.Direction()))
		}
	}
}

// IsConnected reports whether a central is connected.
func (c *Controller) IsConnected() bool {
	return c.isStarted() && c.machine.IsConnected()
}

// IsReady reports whether the controller is connected, subscribed and
// past the handshake.
func (c *Controller) IsReady() bool {
	return c.isStarted() && c.machine.IsReady()
}

// State returns the session lifecycle state.
func (c *Controller) State() State {
	return c.machine.State()
}

// SignalStrength returns the RSSI in dBm, or 0 when not connected.
func (c *Controller) SignalStrength() int {
	if !c.isStarted() {
		return 0
	}
	return c.monitor.Strength()
}

// HasStrongSignal reports whether the RSSI is above the configured threshold.
func (c *Controller) HasStrongSignal() bool {
	return c.isStarted() && c.monitor.Strong()
}

// ControllerNumber returns the configured controller number.
func (c *Controller) ControllerNumber() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.ControllerNumber
}

// ServiceUUID returns the service UUID for the configured controller
// number, or "" if the number is invalid.
func (c *Controller) ServiceUUID() string {
	id, err := DeriveIdentity(c.ControllerNumber())
	if err != nil {
		return ""
	}
	return id.ServiceUUID
}

// DeviceName returns the advertised name, set by Start.
func (c *Controller) DeviceName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceName
}

// OnConnect implements EventSink.
func (c *Controller) OnConnect() {
	c.machine.OnConnect()
	c.indicator.Force(true)
}

// OnDisconnect implements EventSink.
func (c *Controller) OnDisconnect() {
	c.machine.OnDisconnect()
}

// OnCharacteristicWritten implements EventSink.
func (c *Controller) OnCharacteristicWritten(value byte) {
	c.machine.OnCharacteristicWritten(value)
}

// Close stops advertising and drops any connection.
func (c *Controller) Close() error {
	c.mu.Lock()
	started := c.started
	c.started = false
	c.mu.Unlock()

	if !started {
		return nil
	}
	// Detach first so the disconnect below does not resume advertising.
	c.transport.SetEventSink(nil)

	var errs []error
	if err := c.transport.StopAdvertising(); err != nil {
		errs = append(errs, fmt.Errorf("ble: stop advertising: %w", err))
	}
	if c.transport.IsCentralConnected() {
		if err := c.transport.Disconnect(); err != nil {
			errs = append(errs, fmt.Errorf("ble: disconnect: %w", err))
		}
	}
	// The sink is detached, so OnDisconnect will not arrive to do this.
	c.machine.reset()
	c.indicator.Force(false)
	return errors.Join(errs...)
}

func (c *Controller) isStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// debug logs at info level when the controller was configured with Debug.
func (c *Controller) debug(msg string, args ...any) {
	level := slog.LevelDebug
	if c.opts.Debug {
		level = slog.LevelInfo
	}
	slog.Log(context.Background(), level, msg, args...)
}
