package spectral

import (
	"errors"
	"math"
)

// Default analysis parameters for 16 kHz speech.
const (
	DefaultFrameSize    = 512
	DefaultHopSize      = 256
	DefaultMelBanks     = 26
	DefaultCoefficients = 13
	DefaultSampleRate   = 16000
)

// Params describes the fixed analysis geometry of a FilterBank.
type Params struct {
	FrameSize    int // samples per analysis frame
	HopSize      int // samples between frame starts
	MelBanks     int // number of triangular mel filters
	Coefficients int // number of cepstral coefficients kept
	SampleRate   int // expected input sample rate in Hz
}

// DefaultParams returns the standard 512/256 geometry at 16 kHz.
func DefaultParams() Params {
	return Params{
		FrameSize:    DefaultFrameSize,
		HopSize:      DefaultHopSize,
		MelBanks:     DefaultMelBanks,
		Coefficients: DefaultCoefficients,
		SampleRate:   DefaultSampleRate,
	}
}

// FilterBank holds the matrices precomputed from Params: the triangular mel
// filter bank, the DCT-II basis that turns log mel energies into cepstral
// coefficients, and the Hamming window. It is immutable after construction
// and safe for concurrent use; build one at startup and pass it into every
// Analyzer that should share the geometry.
type FilterBank struct {
	params  Params
	mel     [][]float64 // [MelBanks][FrameSize/2]
	dct     [][]float64 // [Coefficients][MelBanks]
	window  []float64   // [FrameSize]
	numBins int         // FrameSize / 2
}

// NewFilterBank validates p and precomputes the filter matrices.
func NewFilterBank(p Params) (*FilterBank, error) {
	if p.FrameSize <= 0 || p.FrameSize&(p.FrameSize-1) != 0 {
		return nil, errors.New("frame size must be a positive power of two")
	}
	if p.HopSize <= 0 || p.HopSize > p.FrameSize {
		return nil, errors.New("hop size must be in (0, frame size]")
	}
	if p.MelBanks <= 0 || p.Coefficients <= 0 || p.Coefficients > p.MelBanks {
		return nil, errors.New("need 0 < coefficients <= mel banks")
	}
	if p.SampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}

	fb := &FilterBank{
		params:  p,
		numBins: p.FrameSize / 2,
		mel:     melFilterBank(p.MelBanks, p.FrameSize, p.SampleRate),
		dct:     dctBasis(p.Coefficients, p.MelBanks),
		window:  hammingWindow(p.FrameSize),
	}
	return fb, nil
}

// Params returns the geometry the bank was built from.
func (fb *FilterBank) Params() Params { return fb.params }

// hzToMel converts frequency in Hz to mel scale.
func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// melToHz converts mel scale back to Hz.
func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// melFilterBank builds the triangular filters: MelBanks+2 linearly spaced
// points on the mel scale between 0 Hz and Nyquist, converted back to Hz and
// truncated to FFT bin indices. Each triangle rises from 0 at its left edge
// to 1 at its center bin and falls back to 0 at its right edge; no
// per-bandwidth energy normalization is applied.
func melFilterBank(numMels, frameSize, sampleRate int) [][]float64 {
	numBins := frameSize / 2
	melLow := hzToMel(0)
	melHigh := hzToMel(float64(sampleRate) / 2)

	melPoints := make([]float64, numMels+2)
	step := (melHigh - melLow) / float64(numMels+1)
	for i := range melPoints {
		melPoints[i] = melLow + float64(i)*step
	}

	bins := make([]int, numMels+2)
	for i, m := range melPoints {
		hz := melToHz(m)
		bin := int(hz * float64(frameSize) / float64(sampleRate))
		if bin >= numBins {
			bin = numBins - 1
		}
		bins[i] = bin
	}

	bank := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		filter := make([]float64, numBins)
		left, center, right := bins[m], bins[m+1], bins[m+2]

		for k := left; k <= center; k++ {
			if center > left {
				filter[k] = float64(k-left) / float64(center-left)
			}
		}
		for k := center; k <= right; k++ {
			if right > center {
				filter[k] = float64(right-k) / float64(right-center)
			}
		}
		bank[m] = filter
	}
	return bank
}

// dctBasis builds the DCT-II style basis with entries
// cos(pi * i * (j + 0.5) / numMels).
func dctBasis(numCoeffs, numMels int) [][]float64 {
	basis := make([][]float64, numCoeffs)
	for i := 0; i < numCoeffs; i++ {
		row := make([]float64, numMels)
		for j := 0; j < numMels; j++ {
			row[j] = math.Cos(math.Pi * float64(i) * (float64(j) + 0.5) / float64(numMels))
		}
		basis[i] = row
	}
	return basis
}

// hammingWindow computes a Hamming window of the given length.
func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}
