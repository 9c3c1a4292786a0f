package label

import (
	"math"
	"testing"
)

// Round-trip precision of the shared pt/mm constants.
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt->mm->pt drift: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

func TestLengthConversions(t *testing.T) {
	pt := Pt(12)
	if got := pt.ToMM(); math.Abs(got-12*PtToMm) > 1e-9 {
		t.Fatalf("12pt to mm: got %g want %g", got, 12*PtToMm)
	}
	mm := Mm(10)
	if got := mm.ToPT(); math.Abs(got-10*MmToPt) > 1e-9 {
		t.Fatalf("10mm to pt: got %g want %g", got, 10*MmToPt)
	}
	if got := mm.ToMM(); got != 10 {
		t.Fatalf("10mm to mm: got %g want 10", got)
	}
}

// Line-units must not resolve through To; they only resolve against a
// RenderScale, so padding cannot silently rescale with the data axes.
func TestLineUnitsResolveAgainstScale(t *testing.T) {
	l := Lines(0.25)
	scale := RenderScale{LineHeightMM: 4.65}
	if got, want := l.Resolve(scale), 0.25*4.65; math.Abs(got-want) > 1e-9 {
		t.Fatalf("0.25 lines at 4.65mm line height: got %g want %g", got, want)
	}
	// doubling the base line height doubles the resolved padding
	double := l.Resolve(RenderScale{LineHeightMM: 9.3})
	if math.Abs(double-2*l.Resolve(scale)) > 1e-9 {
		t.Fatalf("line-units must scale with the render scale only: got %g", double)
	}
	// absolute units ignore the scale
	if got := Mm(3).Resolve(scale); got != 3 {
		t.Fatalf("absolute mm must ignore the render scale: got %g", got)
	}
}

func TestInsetResolve(t *testing.T) {
	in := Inset{Top: Mm(1), Right: Pt(72), Bottom: Lines(1), Left: Mm(0)}
	got := in.Resolve(RenderScale{LineHeightMM: 5})
	if got.Top != 1 {
		t.Fatalf("top: got %g want 1", got.Top)
	}
	if math.Abs(got.Right-72*PtToMm) > 1e-9 {
		t.Fatalf("right: got %g want %g", got.Right, 72*PtToMm)
	}
	if got.Bottom != 5 {
		t.Fatalf("bottom: got %g want 5", got.Bottom)
	}
	if got.Left != 0 {
		t.Fatalf("left: got %g want 0", got.Left)
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want Length
	}{
		{"2mm", Mm(2)},
		{"6pt", Pt(6)},
		{"0.25lines", Lines(0.25)},
		{"1.5line", Lines(1.5)},
		{"3", Mm(3)},
	}
	for _, c := range cases {
		got, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parse %q: got %+v want %+v", c.in, got, c.want)
		}
	}
	if _, err := ParseLength("abc"); err == nil {
		t.Fatalf("expected error for invalid length")
	}
}

func TestDefaultBoxParameters(t *testing.T) {
	box := DefaultBoxParameters()
	if box.Padding.Top != Lines(0.25) || box.Padding.Left != Lines(0.25) {
		t.Fatalf("default padding: got %+v want 0.25 lines each side", box.Padding)
	}
	if !box.Margin.Top.IsZero() {
		t.Fatalf("default margin must be zero: got %+v", box.Margin)
	}
	if box.CornerRadius != Lines(0.15) {
		t.Fatalf("default corner radius: got %+v want 0.15 lines", box.CornerRadius)
	}
}
