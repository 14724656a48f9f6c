package diarize

import "testing"

// Two speakers with a 2-second gap between them.
func gapTimeline() *Timeline {
	return NewTimeline([]Segment{
		{SpeakerTag: "spk_a", Start: 0, End: 5},
		{SpeakerTag: "spk_b", Start: 7, End: 10},
	})
}

func TestSpeakerAtContainment(t *testing.T) {
	tl := gapTimeline()

	for _, tc := range []struct {
		at   float64
		want string
	}{
		{0, "spk_a"}, {2.5, "spk_a"}, {5, "spk_a"},
		{7, "spk_b"}, {9.9, "spk_b"}, {10, "spk_b"},
	} {
		got, ok := tl.SpeakerAt(tc.at, DefaultTolerance)
		if !ok || got != tc.want {
			t.Errorf("SpeakerAt(%.1f) = (%q, %v), want %q", tc.at, got, ok, tc.want)
		}
	}
}

func TestSpeakerAtNearestBoundary(t *testing.T) {
	tl := gapTimeline()

	// 5.8 sits in the gap: 0.8 s after spk_a ends, 1.2 s before spk_b starts.
	if got, ok := tl.SpeakerAt(5.8, DefaultTolerance); !ok || got != "spk_a" {
		t.Errorf("SpeakerAt(5.8) = (%q, %v), want spk_a", got, ok)
	}
	// 6.5 is closer to spk_b's start.
	if got, ok := tl.SpeakerAt(6.5, DefaultTolerance); !ok || got != "spk_b" {
		t.Errorf("SpeakerAt(6.5) = (%q, %v), want spk_b", got, ok)
	}
	// 20 is far beyond any boundary.
	if _, ok := tl.SpeakerAt(20, DefaultTolerance); ok {
		t.Error("SpeakerAt(20) should not resolve")
	}
	// A generous tolerance can still reach it.
	if got, ok := tl.SpeakerAt(20, 15); !ok || got != "spk_b" {
		t.Errorf("SpeakerAt(20, 15) = (%q, %v), want spk_b", got, ok)
	}
}

func TestSpeakerAtCarryForward(t *testing.T) {
	tl := gapTimeline()

	// Mid-gap, beyond the tight tolerance of both boundaries: the last
	// speaker to finish carries forward.
	if got, ok := tl.SpeakerAtCarryForward(6.0); !ok || got != "spk_a" {
		t.Errorf("carry-forward at 6.0 = (%q, %v), want spk_a", got, ok)
	}
	// Well past the last segment: spk_b spoke most recently.
	if got, ok := tl.SpeakerAtCarryForward(30); !ok || got != "spk_b" {
		t.Errorf("carry-forward at 30 = (%q, %v), want spk_b", got, ok)
	}
	// Inside a segment the tight resolution still wins.
	if got, ok := tl.SpeakerAtCarryForward(8); !ok || got != "spk_b" {
		t.Errorf("carry-forward at 8 = (%q, %v), want spk_b", got, ok)
	}
}

func TestCarryForwardBeforeAllSpeech(t *testing.T) {
	tl := NewTimeline([]Segment{
		{SpeakerTag: "spk_a", Start: 10, End: 15},
		{SpeakerTag: "spk_b", Start: 16, End: 20},
	})

	// 2.0 precedes everything with nobody to carry forward from; the first
	// segment's speaker is assumed.
	if got, ok := tl.SpeakerAtCarryForward(2.0); !ok || got != "spk_a" {
		t.Errorf("carry-forward at 2.0 = (%q, %v), want spk_a", got, ok)
	}
}

func TestCarryForwardEmptyTimeline(t *testing.T) {
	tl := NewTimeline(nil)
	if _, ok := tl.SpeakerAtCarryForward(1.0); ok {
		t.Error("empty timeline must not resolve")
	}
	if tl.Len() != 0 {
		t.Errorf("Len = %d, want 0", tl.Len())
	}
}

func TestAssignPoints(t *testing.T) {
	tl := gapTimeline()

	points := []Point{
		{ID: "w1", Time: 1.0},
		{ID: "w2", Time: 6.0},
		{ID: "w3", Time: 8.0},
	}
	assigned := tl.AssignPoints(points)
	want := map[string]string{"w1": "spk_a", "w2": "spk_a", "w3": "spk_b"}
	for id, tag := range want {
		if assigned[id] != tag {
			t.Errorf("assigned[%s] = %q, want %q", id, assigned[id], tag)
		}
	}

	if got := NewTimeline(nil).AssignPoints(points); len(got) != 0 {
		t.Errorf("empty timeline assigned %d points, want 0", len(got))
	}
}

func TestNewTimelineCopiesInput(t *testing.T) {
	segs := []Segment{{SpeakerTag: "spk_a", Start: 0, End: 5}}
	tl := NewTimeline(segs)
	segs[0].SpeakerTag = "mutated"

	if got, _ := tl.SpeakerAt(1, DefaultTolerance); got != "spk_a" {
		t.Errorf("timeline saw caller mutation: got %q", got)
	}
}
