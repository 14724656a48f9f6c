// Package audio adapts decoded WAV files into the mono, normalized float
// sample buffers the spectral frontend consumes. Decoding of compressed
// containers and resampling stay upstream; this package only handles PCM WAV.
package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// ReadMonoWAV reads a PCM WAV file and returns mono samples normalized to
// [-1, 1] along with the file's sample rate. Stereo input is downmixed by
// averaging channels; more channels are rejected.
func ReadMonoWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s: not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("empty PCM buffer")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	samples, err := downmix(buf.Data, buf.Format.NumChannels, scale)
	if err != nil {
		return nil, 0, err
	}
	return samples, buf.Format.SampleRate, nil
}

// downmix converts interleaved integer samples to mono normalized floats.
func downmix(data []int, numChannels int, scale float64) ([]float64, error) {
	switch numChannels {
	case 1:
		out := make([]float64, len(data))
		for i, s := range data {
			out[i] = float64(s) * scale
		}
		return out, nil
	case 2:
		frames := len(data) / 2
		out := make([]float64, frames)
		for i := 0; i < frames; i++ {
			l := float64(data[2*i]) * scale
			r := float64(data[2*i+1]) * scale
			out[i] = (l + r) * 0.5
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported channel count %d: only mono/stereo supported", numChannels)
	}
}
