package diarize

import (
	"math"
	"sort"
)

// Resolution tolerances in seconds.
const (
	// DefaultTolerance bounds the nearest-boundary search in SpeakerAt:
	// transcript timestamps falling in small diarization gaps still attach
	// to the adjacent segment.
	DefaultTolerance = 1.0

	// carryForwardTolerance is the tighter bound used before falling back to
	// the most recent speaker.
	carryForwardTolerance = 0.5
)

// Timeline answers "who was speaking at time t" for one recording's
// diarization segments. It is read-only after construction.
type Timeline struct {
	segments []Segment
	byEnd    []Segment // sorted by End descending, for carry-forward
}

// NewTimeline copies the segments so later caller mutations cannot skew
// resolution.
func NewTimeline(segments []Segment) *Timeline {
	segs := make([]Segment, len(segments))
	copy(segs, segments)

	byEnd := make([]Segment, len(segs))
	copy(byEnd, segs)
	sort.SliceStable(byEnd, func(i, j int) bool {
		return byEnd[i].End > byEnd[j].End
	})

	return &Timeline{segments: segs, byEnd: byEnd}
}

// Len returns the number of segments.
func (t *Timeline) Len() int { return len(t.segments) }

// SpeakerAt resolves the speaker active at the given time. Exact containment
// (start <= at <= end) wins; otherwise the segment whose start or end
// boundary lies nearest is accepted if that distance is within tolerance.
// Returns ("", false) when nothing is close enough.
func (t *Timeline) SpeakerAt(at, tolerance float64) (string, bool) {
	for _, seg := range t.segments {
		if seg.Start <= at && at <= seg.End {
			return seg.SpeakerTag, true
		}
	}

	bestDist := math.Inf(1)
	bestTag := ""
	for _, seg := range t.segments {
		d := math.Min(math.Abs(seg.Start-at), math.Abs(seg.End-at))
		if d < bestDist {
			bestDist = d
			bestTag = seg.SpeakerTag
		}
	}
	if bestDist <= tolerance {
		return bestTag, true
	}
	return "", false
}

// SpeakerAtCarryForward resolves like SpeakerAt with a tighter tolerance and
// then falls back to continuity: whoever spoke last is assumed to still be
// speaking into the gap. A timestamp preceding all speech resolves to the
// first segment. The only unresolvable case is an empty timeline, so
// downstream callers get a best-effort label for every point of a recording
// that has any speech at all.
func (t *Timeline) SpeakerAtCarryForward(at float64) (string, bool) {
	if len(t.segments) == 0 {
		return "", false
	}
	if tag, ok := t.SpeakerAt(at, carryForwardTolerance); ok {
		return tag, true
	}
	for _, seg := range t.byEnd {
		if seg.End <= at {
			return seg.SpeakerTag, true
		}
	}
	return t.segments[0].SpeakerTag, true
}

// Point is a transcript anchor (word or sentence boundary) to be attributed
// to a speaker.
type Point struct {
	ID   string  `json:"id"`
	Time float64 `json:"time"` // seconds
}

// AssignPoints applies carry-forward resolution to every point independently
// and returns the ID-to-tag mapping. IDs that cannot be resolved, which is
// possible only when the timeline has no segments, are simply absent.
func (t *Timeline) AssignPoints(points []Point) map[string]string {
	assigned := make(map[string]string, len(points))
	for _, p := range points {
		if tag, ok := t.SpeakerAtCarryForward(p.Time); ok {
			assigned[p.ID] = tag
		}
	}
	return assigned
}
