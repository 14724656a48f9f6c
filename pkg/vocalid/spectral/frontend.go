// Package spectral implements the acoustic frontend: framing, windowing,
// FFT magnitude spectra, mel filter bank energies and cepstral coefficients,
// plus the per-recording VoiceProfile aggregate used for speaker comparison.
package spectral

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

// FrameFeatures is the per-frame bundle produced by the frontend.
// Instances are ephemeral; they only live for the duration of one
// extraction pass.
type FrameFeatures struct {
	MFCC         []float64 // cepstral coefficients, len = Params.Coefficients
	Energy       float64   // RMS of the windowed frame
	PitchHz      float64   // autocorrelation pitch, 0 if unvoiced/out of range
	CentroidHz   float64   // magnitude-weighted mean frequency
	ZeroCrossing float64   // fraction of sign changes in the raw frame
}

// Analyzer runs the spectral frontend over sample buffers. It holds only the
// immutable FilterBank, so one Analyzer may serve concurrent extractions.
type Analyzer struct {
	bank *FilterBank
}

// NewAnalyzer wraps a precomputed FilterBank.
func NewAnalyzer(bank *FilterBank) *Analyzer {
	return &Analyzer{bank: bank}
}

// NewDefaultAnalyzer builds an Analyzer with the standard 16 kHz geometry.
func NewDefaultAnalyzer() *Analyzer {
	bank, err := NewFilterBank(DefaultParams())
	if err != nil {
		// DefaultParams is statically valid.
		panic(err)
	}
	return NewAnalyzer(bank)
}

// Params returns the analysis geometry.
func (a *Analyzer) Params() Params { return a.bank.params }

// ExtractProfile runs the full frontend over a mono sample buffer normalized
// to [-1, 1] and aggregates the per-frame features into a VoiceProfile.
//
// Buffers shorter than one frame yield the empty (all-zero) profile with a
// nil error: "no usable audio" is non-fatal for callers. A sample rate that
// differs from the configured rate is a caller bug and is reported as an
// error; resampling is the decoding collaborator's job.
func (a *Analyzer) ExtractProfile(samples []float64, sampleRate int) (*VoiceProfile, error) {
	p := a.bank.params
	if sampleRate != p.SampleRate {
		return nil, fmt.Errorf("sample rate %d does not match configured rate %d", sampleRate, p.SampleRate)
	}
	frames := a.AnalyzeFrames(samples)
	return aggregateFrames(frames, p.Coefficients), nil
}

// AnalyzeFrames computes per-frame features over all full frames of the
// buffer. Frames are independent, so they are computed concurrently; the
// result slice is indexed by frame number, keeping output deterministic.
func (a *Analyzer) AnalyzeFrames(samples []float64) []FrameFeatures {
	p := a.bank.params
	if len(samples) < p.FrameSize {
		return nil
	}

	numFrames := (len(samples)-p.FrameSize)/p.HopSize + 1
	out := make([]FrameFeatures, numFrames)

	workers := runtime.NumCPU()
	if workers > numFrames {
		workers = numFrames
	}

	var wg sync.WaitGroup
	idx := make(chan int, numFrames)
	for f := 0; f < numFrames; f++ {
		idx <- f
	}
	close(idx)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range idx {
				start := f * p.HopSize
				out[f] = a.analyzeFrame(samples[start : start+p.FrameSize])
			}
		}()
	}
	wg.Wait()

	return out
}

// FrameEnergies returns the RMS energy of every full frame in the buffer,
// computed on the raw (unwindowed) samples. This is the feed for a
// per-session vad.Detector.
func (a *Analyzer) FrameEnergies(samples []float64) []float64 {
	p := a.bank.params
	if len(samples) < p.FrameSize {
		return nil
	}
	numFrames := (len(samples)-p.FrameSize)/p.HopSize + 1
	energies := make([]float64, numFrames)
	for f := 0; f < numFrames; f++ {
		start := f * p.HopSize
		energies[f] = rms(samples[start : start+p.FrameSize])
	}
	return energies
}

// analyzeFrame computes the full feature bundle for one frame.
func (a *Analyzer) analyzeFrame(frame []float64) FrameFeatures {
	p := a.bank.params

	windowed := make([]float64, p.FrameSize)
	for i, s := range frame {
		windowed[i] = s * a.bank.window[i]
	}

	mag := magnitudeSpectrum(windowed)

	return FrameFeatures{
		MFCC:         a.mfcc(mag),
		Energy:       rms(windowed),
		PitchHz:      estimatePitch(frame, p.SampleRate),
		CentroidHz:   spectralCentroid(mag, p.FrameSize, p.SampleRate),
		ZeroCrossing: zeroCrossingRate(frame),
	}
}

// magnitudeSpectrum returns |X[k]| for the first frameSize/2 + 1 real FFT
// bins of the windowed frame.
func magnitudeSpectrum(windowed []float64) []float64 {
	spectrum := fft.FFTReal(windowed)
	half := len(windowed)/2 + 1
	mag := make([]float64, half)
	for k := 0; k < half; k++ {
		re := real(spectrum[k])
		im := imag(spectrum[k])
		mag[k] = math.Sqrt(re*re + im*im)
	}
	return mag
}

// mfcc converts a magnitude spectrum to cepstral coefficients: mel-band
// energies, log compression floored at -10, then the DCT basis.
func (a *Analyzer) mfcc(mag []float64) []float64 {
	p := a.bank.params

	logMel := make([]float64, p.MelBanks)
	for m := 0; m < p.MelBanks; m++ {
		var energy float64
		for k, w := range a.bank.mel[m] {
			if w != 0 {
				energy += w * mag[k]
			}
		}
		lm := math.Log(energy + 1e-10)
		if lm < -10 {
			lm = -10
		}
		logMel[m] = lm
	}

	coeffs := make([]float64, p.Coefficients)
	for i := 0; i < p.Coefficients; i++ {
		var sum float64
		for j, b := range a.bank.dct[i] {
			sum += b * logMel[j]
		}
		coeffs[i] = sum
	}
	return coeffs
}

// spectralCentroid is the magnitude-weighted mean frequency, 0 when the
// spectrum is all zero.
func spectralCentroid(mag []float64, frameSize, sampleRate int) float64 {
	var weighted, total float64
	binHz := float64(sampleRate) / float64(frameSize)
	for k, m := range mag {
		weighted += float64(k) * binHz * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// zeroCrossingRate is the fraction of sign changes between consecutive
// samples of the raw frame.
func zeroCrossingRate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}
