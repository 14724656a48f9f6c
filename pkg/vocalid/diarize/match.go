package diarize

import (
	"math"
	"sort"
)

// DefaultMatchThreshold is the cosine distance below which an embedding is
// considered the same speaker as a known profile.
const DefaultMatchThreshold = 0.4

// KnownProfile is a read-only snapshot of a stored speaker identity. The
// matcher never mutates the library it is handed.
type KnownProfile struct {
	ID        string
	Embedding []float32
}

// Match pairs a known speaker ID with its cosine distance to the query.
type Match struct {
	ID       string
	Distance float64
}

// CosineDistance computes 1 - cos(a, b) over L2-normalized copies of the
// inputs, in [0, 2]: 0 for identical direction, 1 for orthogonal, 2 for
// opposite. A dimensionality other than EmbeddingDim or a zero-norm input
// yields +Inf, meaning "no match possible" rather than an error.
func CosineDistance(a, b []float32) float64 {
	if len(a) != EmbeddingDim || len(b) != EmbeddingDim {
		return math.Inf(1)
	}

	var dot, na, nb float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return math.Inf(1)
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// FindMatch returns the known profile with the minimum cosine distance to
// the embedding, but only when that minimum is strictly below threshold.
// Candidates are scanned in ID order so that equal distances resolve the
// same way regardless of how the caller ordered the library.
func FindMatch(embedding []float32, known []KnownProfile, threshold float64) (Match, bool) {
	if len(known) == 0 {
		return Match{}, false
	}

	candidates := make([]KnownProfile, len(known))
	copy(candidates, known)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID < candidates[j].ID
	})

	best := Match{Distance: math.Inf(1)}
	for _, k := range candidates {
		d := CosineDistance(embedding, k.Embedding)
		if d < best.Distance {
			best = Match{ID: k.ID, Distance: d}
		}
	}
	if best.Distance < threshold {
		return best, true
	}
	return Match{}, false
}

// MatchAllSpeakers runs FindMatch independently for every per-recording
// speaker profile and maps recording-local tags to known speaker IDs. Tags
// with no library match under the threshold are simply absent from the
// result; an empty map is a valid outcome, never an error.
func MatchAllSpeakers(profiles map[string]*SpeakerProfile, known []KnownProfile, threshold float64) map[string]string {
	matched := make(map[string]string, len(profiles))
	for tag, p := range profiles {
		if m, ok := FindMatch(p.Embedding, known, threshold); ok {
			matched[tag] = m.ID
		}
	}
	return matched
}
