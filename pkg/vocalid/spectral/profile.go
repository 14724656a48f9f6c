package spectral

import "math"

// VoiceProfile is the fixed-size statistical summary of one audio unit:
// column-wise mean and sample variance of the MFCCs plus means/variances of
// the auxiliary scalars. It is immutable once built and is the only frontend
// output that crosses the package boundary.
//
// The zero-value profile (all fields zero) is the "insufficient audio"
// sentinel; IsEmpty reports it and Similarity never matches it.
type VoiceProfile struct {
	MFCCMean     []float64 `json:"mfcc_mean"`
	MFCCVariance []float64 `json:"mfcc_variance"`

	PitchMean     float64 `json:"pitch_mean"`
	PitchVariance float64 `json:"pitch_variance"`

	EnergyMean     float64 `json:"energy_mean"`
	EnergyVariance float64 `json:"energy_variance"`

	CentroidMean float64 `json:"centroid_mean"`
	ZCRMean      float64 `json:"zcr_mean"`
}

// Similarity weights. The auxiliary weights sum to auxTotal so the auxiliary
// score can be rescaled back to [0, 1].
const (
	mfccWeight     = 0.7
	pitchWeight    = 0.3
	energyWeight   = 0.2
	centroidWeight = 0.2
	auxTotal       = pitchWeight + energyWeight + centroidWeight
)

// emptyProfile returns the all-zero sentinel with slices sized for k
// coefficients.
func emptyProfile(k int) *VoiceProfile {
	return &VoiceProfile{
		MFCCMean:     make([]float64, k),
		MFCCVariance: make([]float64, k),
	}
}

// IsEmpty reports whether the profile is the "insufficient audio" sentinel.
func (p *VoiceProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	for _, v := range p.MFCCMean {
		if v != 0 {
			return false
		}
	}
	return p.PitchMean == 0 && p.EnergyMean == 0 && p.CentroidMean == 0 && p.ZCRMean == 0
}

// aggregateFrames reduces per-frame features to a VoiceProfile. Pitch
// statistics cover only the frames where a pitch was accepted; every other
// field covers all frames. Variances use the sample (n-1) denominator and
// are 0 when n <= 1.
func aggregateFrames(frames []FrameFeatures, numCoeffs int) *VoiceProfile {
	if len(frames) == 0 {
		return emptyProfile(numCoeffs)
	}

	mfccs := make([][]float64, len(frames))
	energies := make([]float64, len(frames))
	var pitches []float64
	var centroidSum, zcrSum float64

	for i, f := range frames {
		mfccs[i] = f.MFCC
		energies[i] = f.Energy
		centroidSum += f.CentroidHz
		zcrSum += f.ZeroCrossing
		if f.PitchHz > 0 {
			pitches = append(pitches, f.PitchHz)
		}
	}

	mfccMean, mfccVar := columnStats(mfccs, numCoeffs)
	pitchMean, pitchVar := scalarStats(pitches)
	energyMean, energyVar := scalarStats(energies)

	return &VoiceProfile{
		MFCCMean:       mfccMean,
		MFCCVariance:   mfccVar,
		PitchMean:      pitchMean,
		PitchVariance:  pitchVar,
		EnergyMean:     energyMean,
		EnergyVariance: energyVar,
		CentroidMean:   centroidSum / float64(len(frames)),
		ZCRMean:        zcrSum / float64(len(frames)),
	}
}

// columnStats computes per-column mean and sample variance over rows.
func columnStats(rows [][]float64, width int) (mean, variance []float64) {
	mean = make([]float64, width)
	variance = make([]float64, width)
	n := len(rows)
	if n == 0 {
		return mean, variance
	}

	for _, row := range rows {
		for j := 0; j < width; j++ {
			mean[j] += row[j]
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}

	if n <= 1 {
		return mean, variance
	}
	for _, row := range rows {
		for j := 0; j < width; j++ {
			d := row[j] - mean[j]
			variance[j] += d * d
		}
	}
	for j := range variance {
		variance[j] /= float64(n - 1)
	}
	return mean, variance
}

// scalarStats computes mean and sample variance of values, (0, 0) for an
// empty input.
func scalarStats(values []float64) (mean, variance float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	if n <= 1 {
		return mean, 0
	}
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return mean, variance / float64(n-1)
}

// Similarity scores two profiles in roughly [0, 1]: 0.7 times the cosine
// similarity of the mean MFCC vectors plus 0.3 times a normalized
// inverse-distance score over the pitch/energy/centroid means. The score is
// an advisory ranking, not a probability. Empty profiles never match.
func (p *VoiceProfile) Similarity(other *VoiceProfile) float64 {
	if p.IsEmpty() || other.IsEmpty() {
		return 0
	}

	cos := cosineSimilarity(p.MFCCMean, other.MFCCMean)

	aux := pitchWeight*proximity(p.PitchMean, other.PitchMean) +
		energyWeight*proximity(p.EnergyMean, other.EnergyMean) +
		centroidWeight*proximity(p.CentroidMean, other.CentroidMean)
	aux /= auxTotal

	return mfccWeight*cos + (1-mfccWeight)*aux
}

// proximity maps two non-negative scalars to [0, 1]: 1 when equal, falling
// linearly with their difference relative to the larger value. The divisor
// is floored at 1 to avoid dividing by zero.
func proximity(a, b float64) float64 {
	denom := math.Max(math.Max(a, b), 1)
	return 1 - math.Abs(a-b)/denom
}

// cosineSimilarity of two equal-length vectors, 0 when either has zero norm.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// AverageProfiles returns the unweighted arithmetic mean of every field
// across the input profiles, or nil for an empty input. It is used to fold
// several enrollment recordings of one speaker into a single profile.
//
// Each input counts equally regardless of how much audio it summarizes;
// duration-weighted averaging is a deliberate non-feature until the speaker
// ID product asks for it.
func AverageProfiles(profiles []*VoiceProfile) *VoiceProfile {
	if len(profiles) == 0 {
		return nil
	}

	k := len(profiles[0].MFCCMean)
	out := emptyProfile(k)
	n := float64(len(profiles))

	for _, p := range profiles {
		for j := 0; j < k && j < len(p.MFCCMean); j++ {
			out.MFCCMean[j] += p.MFCCMean[j]
			out.MFCCVariance[j] += p.MFCCVariance[j]
		}
		out.PitchMean += p.PitchMean
		out.PitchVariance += p.PitchVariance
		out.EnergyMean += p.EnergyMean
		out.EnergyVariance += p.EnergyVariance
		out.CentroidMean += p.CentroidMean
		out.ZCRMean += p.ZCRMean
	}

	for j := range out.MFCCMean {
		out.MFCCMean[j] /= n
		out.MFCCVariance[j] /= n
	}
	out.PitchMean /= n
	out.PitchVariance /= n
	out.EnergyMean /= n
	out.EnergyVariance /= n
	out.CentroidMean /= n
	out.ZCRMean /= n

	return out
}
