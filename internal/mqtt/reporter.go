package mqtt

import (
	"log/slog"
	"sync"

	"github.com/dfpong/dfpong-controller/internal/ble"
)

// DefaultQueueSize bounds the statuses waiting for the broker.
const DefaultQueueSize = 16

// Reporter is a ble.StateObserver that hands statuses to a Publisher on
// its own goroutine, so a slow broker never stalls the controller loop.
type Reporter struct {
	pub Publisher

	mu      sync.Mutex
	queue   *statusQueue
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
}

// Compile-time check that Reporter observes controller state.
var _ ble.StateObserver = (*Reporter)(nil)

// NewReporter starts a reporter over pub. A non-positive queueSize uses
// DefaultQueueSize.
func NewReporter(pub Publisher, queueSize int) *Reporter {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	r := &Reporter{
		pub:     pub,
		queue:   newStatusQueue(queueSize),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go r.loop()
	return r
}

// ObserveState queues s for publishing. It never blocks.
func (r *Reporter) ObserveState(s ble.Status) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.queue.push(s)
	select {
	case r.wake <- struct{}{}:
	default:
	}
	r.mu.Unlock()
}

func (r *Reporter) loop() {
	defer close(r.stopped)
	for range r.wake {
		r.flush()
	}
	r.flush()
}

func (r *Reporter) flush() {
	r.mu.Lock()
	batch, dropped := r.queue.take()
	r.mu.Unlock()

	if dropped > 0 {
		slog.Warn("[MQTT] status queue full, dropped oldest", "dropped", dropped)
	}

	for _, s := range batch {
		if err := r.pub.PublishStatus(s); err != nil {
			slog.Warn("[MQTT] publish failed", "state", s.State, "connected", r.pub.IsConnected(), "error", err)
			continue
		}
		slog.Debug("[MQTT] published status", "state", s.State, "strong_signal", s.StrongSignal)
	}
}

// Connected reports whether the publisher currently reaches its broker.
func (r *Reporter) Connected() bool {
	return r.pub.IsConnected()
}

// Close flushes queued statuses, then closes the publisher.
func (r *Reporter) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.stopped
		return nil
	}
	r.closed = true
	close(r.wake)
	r.mu.Unlock()

	<-r.stopped
	return r.pub.Close()
}
