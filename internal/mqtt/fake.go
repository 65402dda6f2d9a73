package mqtt

import (
	"sync"

	"github.com/dfpong/dfpong-controller/internal/ble"
)

// FakePublisher records published statuses for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Statuses contains all statuses that were published.
	Statuses []ble.Status

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// PublishError, if set, will be returned by PublishStatus.
	PublishError error

	// Block, if set, makes PublishStatus wait until it is closed.
	Block chan struct{}

	// Offline makes IsConnected report a lost broker.
	Offline bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishStatus records the status.
func (f *FakePublisher) PublishStatus(s ble.Status) error {
	if f.Block != nil {
		<-f.Block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatPayload(s)
	if err != nil {
		return err
	}
	f.Statuses = append(f.Statuses, s)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Published returns a copy of the recorded statuses.
func (f *FakePublisher) Published() []ble.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ble.Status(nil), f.Statuses...)
}

// IsConnected reports false once Offline is set or Close was called.
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.Offline && !f.Closed
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
