package led

import "sync"

// FakeLine records LED levels for test assertions.
type FakeLine struct {
	mu sync.Mutex

	// Levels contains every level written, in order.
	Levels []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeLine creates a FakeLine for testing.
func NewFakeLine() *FakeLine {
	return &FakeLine{}
}

// Set records the level.
func (f *FakeLine) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.Levels = append(f.Levels, on)
	return nil
}

// On reports the last level written.
func (f *FakeLine) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Levels) > 0 && f.Levels[len(f.Levels)-1]
}

// Toggles returns how many times the level changed.
func (f *FakeLine) Toggles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	prev := false
	for _, l := range f.Levels {
		if l != prev {
			n++
		}
		prev = l
	}
	return n
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
