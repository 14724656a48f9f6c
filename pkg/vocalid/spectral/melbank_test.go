package spectral

import (
	"math"
	"testing"
)

func TestNewFilterBankDefaultShape(t *testing.T) {
	fb, err := NewFilterBank(DefaultParams())
	if err != nil {
		t.Fatalf("NewFilterBank failed: %v", err)
	}

	if got := len(fb.mel); got != DefaultMelBanks {
		t.Fatalf("expected %d mel filters, got %d", DefaultMelBanks, got)
	}
	for m, filter := range fb.mel {
		if len(filter) != DefaultFrameSize/2 {
			t.Fatalf("filter %d has %d bins, want %d", m, len(filter), DefaultFrameSize/2)
		}
	}
	if got := len(fb.dct); got != DefaultCoefficients {
		t.Fatalf("expected %d DCT rows, got %d", DefaultCoefficients, got)
	}
	if got := len(fb.window); got != DefaultFrameSize {
		t.Fatalf("expected window of %d, got %d", DefaultFrameSize, got)
	}
}

func TestMelFiltersAreTriangles(t *testing.T) {
	fb, err := NewFilterBank(DefaultParams())
	if err != nil {
		t.Fatalf("NewFilterBank failed: %v", err)
	}

	for m, filter := range fb.mel {
		peak := 0.0
		for _, w := range filter {
			if w < 0 {
				t.Fatalf("filter %d has negative weight %f", m, w)
			}
			if w > peak {
				peak = w
			}
		}
		if peak == 0 {
			t.Errorf("filter %d is all-zero", m)
			continue
		}
		// Full-amplitude normalization: each triangle peaks at exactly 1.
		if math.Abs(peak-1.0) > 1e-12 {
			t.Errorf("filter %d peaks at %f, want 1.0", m, peak)
		}
	}
}

func TestDCTBasisEntries(t *testing.T) {
	fb, err := NewFilterBank(DefaultParams())
	if err != nil {
		t.Fatalf("NewFilterBank failed: %v", err)
	}

	// Row 0 is cos(0) everywhere.
	for j, v := range fb.dct[0] {
		if math.Abs(v-1.0) > 1e-12 {
			t.Fatalf("dct[0][%d] = %f, want 1.0", j, v)
		}
	}

	// Spot-check the defining formula.
	for _, tc := range []struct{ i, j int }{{1, 0}, {5, 13}, {12, 25}} {
		want := math.Cos(math.Pi * float64(tc.i) * (float64(tc.j) + 0.5) / float64(DefaultMelBanks))
		if got := fb.dct[tc.i][tc.j]; math.Abs(got-want) > 1e-12 {
			t.Errorf("dct[%d][%d] = %f, want %f", tc.i, tc.j, got, want)
		}
	}
}

func TestNewFilterBankRejectsBadParams(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Params)
	}{
		{"non power of two frame", func(p *Params) { p.FrameSize = 500 }},
		{"zero hop", func(p *Params) { p.HopSize = 0 }},
		{"hop larger than frame", func(p *Params) { p.HopSize = 1024 }},
		{"more coefficients than banks", func(p *Params) { p.Coefficients = 40 }},
		{"zero sample rate", func(p *Params) { p.SampleRate = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mod(&p)
			if _, err := NewFilterBank(p); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}
