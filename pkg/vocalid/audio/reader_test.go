package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV encodes 16-bit PCM test data into a temp WAV file.
func writeWAV(t *testing.T, data []int, sampleRate, numChannels int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, numChannels, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: numChannels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encoding WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing encoder: %v", err)
	}
	return path
}

func TestReadMonoWAV(t *testing.T) {
	data := []int{0, 16384, -16384, 32767, -32768}
	path := writeWAV(t, data, 16000, 1)

	samples, rate, err := ReadMonoWAV(path)
	if err != nil {
		t.Fatalf("ReadMonoWAV failed: %v", err)
	}
	if rate != 16000 {
		t.Errorf("rate = %d, want 16000", rate)
	}
	if len(samples) != len(data) {
		t.Fatalf("got %d samples, want %d", len(samples), len(data))
	}
	for i, raw := range data {
		want := float64(raw) / 32768
		if math.Abs(samples[i]-want) > 1e-9 {
			t.Errorf("samples[%d] = %f, want %f", i, samples[i], want)
		}
	}
}

func TestReadMonoWAVDownmixesStereo(t *testing.T) {
	// Interleaved L/R frames.
	data := []int{16384, 0, -16384, 16384, 32766, 32766}
	path := writeWAV(t, data, 44100, 2)

	samples, rate, err := ReadMonoWAV(path)
	if err != nil {
		t.Fatalf("ReadMonoWAV failed: %v", err)
	}
	if rate != 44100 {
		t.Errorf("rate = %d, want 44100", rate)
	}
	want := []float64{0.25, 0, 32766.0 / 32768}
	if len(samples) != len(want) {
		t.Fatalf("got %d frames, want %d", len(samples), len(want))
	}
	for i, w := range want {
		if math.Abs(samples[i]-w) > 1e-9 {
			t.Errorf("samples[%d] = %f, want %f", i, samples[i], w)
		}
	}
}

func TestReadMonoWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-wav.wav")
	if err := os.WriteFile(path, []byte("definitely not RIFF data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadMonoWAV(path); err == nil {
		t.Error("expected error for a non-WAV file")
	}

	if _, _, err := ReadMonoWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestDownmixRejectsMultichannel(t *testing.T) {
	if _, err := downmix([]int{1, 2, 3, 4, 5, 6}, 6, 1.0/32768); err == nil {
		t.Error("expected error for 5.1 audio")
	}
}
