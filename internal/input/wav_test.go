package input

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dfpong/dfpong-controller/internal/ble/protocol"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWav writes a mono 16-bit file at 8kHz whose consecutive 100ms
// blocks have the given constant amplitudes (fractions of full scale).
func writeWav(t *testing.T, amplitudes ...float64) string {
	t.Helper()
	const rate = 8000
	path := filepath.Join(t.TempDir(), "track.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	var data []int
	for _, a := range amplitudes {
		v := int(a * math.MaxInt16)
		for i := 0; i < rate/10; i++ {
			// Alternate sign so the block is a square wave with RMS a.
			if i%2 == 0 {
				data = append(data, v)
			} else {
				data = append(data, -v)
			}
		}
	}

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	return path
}

func TestLoadWavLevels(t *testing.T) {
	path := writeWav(t, 0.5, 0.2, 0.0)

	w, err := LoadWav(path, 100*time.Millisecond, 0.3, 0.1)
	if err != nil {
		t.Fatalf("LoadWav() error = %v", err)
	}
	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", w.Len())
	}
	want := []float64{0.5, 0.2, 0}
	for i, l := range w.levels {
		if math.Abs(l-want[i]) > 0.01 {
			t.Errorf("level %d = %.3f, want %.3f", i, l, want[i])
		}
	}
}

func TestWavReplayLoops(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	w := newWavReplay([]float64{0.5, 0.2, 0}, 100*time.Millisecond, 0.3, 0.1, clock)

	want := []protocol.Signal{
		protocol.Up, protocol.Down, protocol.Neutral,
		protocol.Up, protocol.Down, protocol.Neutral,
	}
	for i, d := range want {
		if got := w.Direction(); got != d {
			t.Errorf("window %d: %s, want %s", i, got, d)
		}
		now = now.Add(100 * time.Millisecond)
	}
}

func TestLoadWavErrors(t *testing.T) {
	if _, err := LoadWav(filepath.Join(t.TempDir(), "missing.wav"), 100*time.Millisecond, 0.3, 0.1); err == nil {
		t.Error("LoadWav() should fail for a missing file")
	}

	junk := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(junk, []byte("not a riff file at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWav(junk, 100*time.Millisecond, 0.3, 0.1); err == nil {
		t.Error("LoadWav() should fail for a non-wav file")
	}

	if _, err := LoadWav(writeWav(t, 0.5), 0, 0.3, 0.1); err == nil {
		t.Error("LoadWav() should reject a zero window")
	}
}
