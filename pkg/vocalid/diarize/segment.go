// Package diarize consumes the output of an external diarization engine
// (time-stamped segments with recording-local speaker tags and neural
// embeddings) and turns it into per-speaker embedding profiles, timestamp
// to speaker resolution, and matches against a library of known speakers.
package diarize

import "math"

// EmbeddingDim is the fixed dimensionality of speaker embeddings produced by
// the diarization engine. Vectors of any other length are skipped or score
// an infinite distance.
const EmbeddingDim = 256

// Segment is one diarization engine output unit. The speaker tag is local to
// a single recording and carries no identity across recordings.
type Segment struct {
	SpeakerTag string    `json:"speaker_tag"`
	Start      float64   `json:"start"` // seconds
	End        float64   `json:"end"`   // seconds
	Quality    float64   `json:"quality"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// SpeakerProfile accumulates all segments sharing one tag within a recording
// into a single L2-normalized embedding plus the total speech duration. It is
// mutated only during BuildSpeakerProfiles and frozen afterwards.
type SpeakerProfile struct {
	Tag           string    `json:"tag"`
	Embedding     []float32 `json:"embedding"`
	TotalDuration float64   `json:"total_duration"`
}

// BuildSpeakerProfiles groups segments by speaker tag and computes for each
// tag the duration-weighted average embedding, L2-normalized, paired with the
// summed duration. Segments with non-positive duration or an embedding of the
// wrong dimensionality are skipped silently; they never abort aggregation.
//
// When the engine supplies a pre-averaged per-speaker embedding in
// preAveraged (its "speaker database"), that embedding is preferred, again
// L2-normalized, while the locally summed duration is retained.
func BuildSpeakerProfiles(segments []Segment, preAveraged map[string][]float32) map[string]*SpeakerProfile {
	type accum struct {
		weighted []float64
		duration float64
		total    float64 // includes segments whose embedding was skipped
	}

	acc := make(map[string]*accum)
	order := make([]string, 0, 4)

	for _, seg := range segments {
		dur := seg.Duration()
		if dur <= 0 {
			continue
		}
		a := acc[seg.SpeakerTag]
		if a == nil {
			a = &accum{weighted: make([]float64, EmbeddingDim)}
			acc[seg.SpeakerTag] = a
			order = append(order, seg.SpeakerTag)
		}
		a.total += dur
		if len(seg.Embedding) != EmbeddingDim {
			continue
		}
		for i, v := range seg.Embedding {
			a.weighted[i] += float64(v) * dur
		}
		a.duration += dur
	}

	profiles := make(map[string]*SpeakerProfile, len(acc))
	for _, tag := range order {
		a := acc[tag]

		var emb []float32
		if pre, ok := preAveraged[tag]; ok && len(pre) == EmbeddingDim {
			emb = Normalize(pre)
		} else if a.duration > 0 {
			emb = make([]float32, EmbeddingDim)
			for i, v := range a.weighted {
				emb[i] = float32(v / a.duration)
			}
			emb = Normalize(emb)
		}
		if emb == nil {
			continue
		}

		profiles[tag] = &SpeakerProfile{
			Tag:           tag,
			Embedding:     emb,
			TotalDuration: a.total,
		}
	}
	return profiles
}

// Normalize returns an L2-normalized copy of v, or nil when the norm is 0.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return nil
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
