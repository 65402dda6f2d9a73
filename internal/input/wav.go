package input

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WavReplay plays a recorded loudness track back as directions, looping at
// the end. It lets a session be reproduced without a microphone.
type WavReplay struct {
	levels    []float64
	window    time.Duration
	upLevel   float64
	downLevel float64

	now   func() time.Time
	start time.Time
}

// LoadWav decodes path and splits it into window-long RMS levels.
func LoadWav(path string, window time.Duration, upLevel, downLevel float64) (*WavReplay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wav file: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid wav file", path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav file: %w", err)
	}

	levels, err := windowLevels(buf, window)
	if err != nil {
		return nil, err
	}
	return newWavReplay(levels, window, upLevel, downLevel, time.Now), nil
}

func newWavReplay(levels []float64, window time.Duration, upLevel, downLevel float64, now func() time.Time) *WavReplay {
	return &WavReplay{
		levels:    levels,
		window:    window,
		upLevel:   upLevel,
		downLevel: downLevel,
		now:       now,
		start:     now(),
	}
}

// windowLevels computes the normalised RMS of each window of buf,
// averaging across channels.
func windowLevels(buf *audio.IntBuffer, window time.Duration) ([]float64, error) {
	if buf == nil || buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return nil, errors.New("wav file has no usable format")
	}
	if window <= 0 {
		return nil, errors.New("replay window must be positive")
	}
	depth := buf.SourceBitDepth
	if depth <= 0 {
		depth = 16
	}
	full := float64(int64(1) << (depth - 1))

	frames := int(int64(buf.Format.SampleRate) * int64(window) / int64(time.Second))
	if frames < 1 {
		frames = 1
	}
	step := frames * buf.Format.NumChannels

	var levels []float64
	for off := 0; off < len(buf.Data); off += step {
		end := min(off+step, len(buf.Data))
		var sum float64
		for _, s := range buf.Data[off:end] {
			v := float64(s) / full
			sum += v * v
		}
		levels = append(levels, math.Sqrt(sum/float64(end-off)))
	}
	if len(levels) == 0 {
		return nil, errors.New("wav file contains no samples")
	}
	return levels, nil
}

// Len returns the number of windows in one loop of the track.
func (w *WavReplay) Len() int { return len(w.levels) }

func (w *WavReplay) Direction() protocol.Signal {
	elapsed := w.now().Sub(w.start)
	if elapsed < 0 {
		elapsed = 0
	}
	i := int(elapsed/w.window) % len(w.levels)
	return levelDirection(w.levels[i], w.upLevel, w.downLevel)
}

func (w *WavReplay) Close() error { return nil }
