//go:build !tinygo

package input

import (
	"sync"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
	hook "github.com/robotn/gohook"
)

// keyState tracks which direction keys are held. Holding keys for both
// directions cancels out to Neutral.
type keyState struct {
	sides map[string]protocol.Signal
	held  map[string]bool
}

func newKeyState(upKeys, downKeys []string) *keyState {
	ks := &keyState{
		sides: make(map[string]protocol.Signal, len(upKeys)+len(downKeys)),
		held:  make(map[string]bool),
	}
	for _, k := range upKeys {
		ks.sides[k] = protocol.Up
	}
	for _, k := range downKeys {
		ks.sides[k] = protocol.Down
	}
	return ks
}

func (ks *keyState) press(key string)   { ks.held[key] = true }
func (ks *keyState) release(key string) { delete(ks.held, key) }

func (ks *keyState) direction() protocol.Signal {
	up, down := false, false
	for k := range ks.held {
		switch ks.sides[k] {
		case protocol.Up:
			up = true
		case protocol.Down:
			down = true
		}
	}
	switch {
	case up && !down:
		return protocol.Up
	case down && !up:
		return protocol.Down
	default:
		return protocol.Neutral
	}
}

// Keyboard reads direction keys through a global keyboard hook, so the
// controller works without window focus. Only one Keyboard may be active
// at a time because gohook registrations are process-wide.
type Keyboard struct {
	mu    sync.Mutex
	state *keyState

	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewKeyboard starts listening for upKeys and downKeys (lowercase gohook
// key names such as "up", "w").
func NewKeyboard(upKeys, downKeys []string) *Keyboard {
	k := &Keyboard{
		state:   newKeyState(upKeys, downKeys),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	for _, key := range append(append([]string(nil), upKeys...), downKeys...) {
		key := key
		hook.Register(hook.KeyDown, []string{key}, func(hook.Event) {
			k.mu.Lock()
			k.state.press(key)
			k.mu.Unlock()
		})
		hook.Register(hook.KeyUp, []string{key}, func(hook.Event) {
			k.mu.Lock()
			k.state.release(key)
			k.mu.Unlock()
		})
	}

	evChan := hook.Start()
	go func() {
		<-k.done
		hook.End()
	}()
	go func() {
		<-hook.Process(evChan)
		close(k.stopped)
	}()
	return k
}

func (k *Keyboard) Direction() protocol.Signal {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state.direction()
}

// Close stops the hook and waits for the event loop to exit.
// It is safe to call multiple times.
func (k *Keyboard) Close() error {
	k.once.Do(func() {
		close(k.done)
	})
	<-k.stopped
	return nil
}
