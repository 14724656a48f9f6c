package spectral

// Voiced speech search band for pitch estimation.
const (
	minPitchHz = 50.0
	maxPitchHz = 500.0
)

// estimatePitch returns the fundamental frequency of the frame estimated by
// unnormalized autocorrelation over lags corresponding to [50, 500] Hz.
// It returns 0 when the frame is too short to search that lag range or when
// the winning lag maps outside the voiced band; such frames contribute no
// pitch sample to profile aggregation.
func estimatePitch(frame []float64, sampleRate int) float64 {
	minLag := int(float64(sampleRate) / maxPitchHz)
	maxLag := int(float64(sampleRate) / minPitchHz)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(frame) {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 0
	}

	pitch := float64(sampleRate) / float64(bestLag)
	if pitch < minPitchHz || pitch > maxPitchHz {
		return 0
	}
	return pitch
}
