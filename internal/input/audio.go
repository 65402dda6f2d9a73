//go:build !tinygo

package input

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
	"github.com/gen2brain/malgo"
)

// Microphone steers the paddle by loudness: shout for Up, hum for Down,
// stay quiet for Neutral. The level is the RMS of the latest capture block.
type Microphone struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	upLevel   float64
	downLevel float64
	level     atomic.Uint64 // math.Float64bits of the latest RMS
}

// NewMicrophone opens the default capture device as mono float32 at
// sampleRate and starts listening. Call Close() when done.
func NewMicrophone(sampleRate uint32, upLevel, downLevel float64) (*Microphone, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}

	m := &Microphone{ctx: ctx, upLevel: upLevel, downLevel: downLevel}

	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatF32
	deviceCfg.Capture.Channels = 1
	deviceCfg.SampleRate = sampleRate

	device, err := malgo.InitDevice(ctx.Context, deviceCfg, malgo.DeviceCallbacks{Data: m.onData})
	if err != nil {
		m.freeContext()
		return nil, fmt.Errorf("initializing capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		m.freeContext()
		return nil, fmt.Errorf("starting capture device: %w", err)
	}
	m.device = device
	return m, nil
}

// Level returns the most recent RMS level in [0, 1].
func (m *Microphone) Level() float64 {
	return math.Float64frombits(m.level.Load())
}

func (m *Microphone) Direction() protocol.Signal {
	return levelDirection(m.Level(), m.upLevel, m.downLevel)
}

// Close stops capture and releases all audio resources.
func (m *Microphone) Close() error {
	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}
	return m.freeContext()
}

func (m *Microphone) freeContext() error {
	if m.ctx == nil {
		return nil
	}
	ctx := m.ctx
	m.ctx = nil
	if err := ctx.Uninit(); err != nil {
		return fmt.Errorf("uninitializing audio context: %w", err)
	}
	ctx.Free()
	return nil
}

// onData is the malgo callback invoked when audio data is available.
func (m *Microphone) onData(_, pSample []byte, frameCount uint32) {
	samples := bytesToFloat32(pSample, frameCount)
	if len(samples) == 0 {
		return
	}
	m.level.Store(math.Float64bits(rms(samples)))
}

// bytesToFloat32 converts raw bytes (little-endian float32) to a float32 slice.
func bytesToFloat32(data []byte, sampleCount uint32) []float32 {
	samples := make([]float32, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		offset := i * 4
		if offset+4 > uint32(len(data)) {
			break
		}
		bits := binary.LittleEndian.Uint32(data[offset : offset+4])
		samples = append(samples, math.Float32frombits(bits))
	}
	return samples
}

// rms returns the root mean square of samples.
func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
