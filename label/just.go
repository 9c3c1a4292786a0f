package label

import "fmt"

// Justification resolution. Literal keywords map through a fixed table;
// inward/outward are relational and depend on the element's own coordinate
// relative to the panel midpoint. Values within the tolerance band around
// the midpoint resolve to centered, on both sides.

const (
	panelMidpoint = 0.5
	justTolerance = 0.001
)

var literalJust = map[string]float64{
	"left":   0,
	"bottom": 0,
	"center": 0.5,
	"centre": 0.5,
	"middle": 0.5,
	"right":  1,
	"top":    1,
}

// direction classification of a coordinate against the panel midpoint.
type justDir int

const (
	dirLow justDir = iota
	dirMiddle
	dirHigh
)

func classify(coord float64) justDir {
	switch {
	case coord < panelMidpoint-justTolerance:
		return dirLow
	case coord > panelMidpoint+justTolerance:
		return dirHigh
	default:
		return dirMiddle
	}
}

// ResolveJust converts a vector of justification values to numeric anchor
// fractions. Numeric entries pass through unchanged; symbolic entries
// resolve per element against the matching coordinate (x for hjust, y for
// vjust). Order is preserved and the result has the same length as values.
func ResolveJust(values []Justify, coords []float64) ([]float64, error) {
	if len(values) != len(coords) {
		return nil, fmt.Errorf("label: %d justification values for %d coordinates", len(values), len(coords))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		r, err := resolveJustOne(v, coords[i])
		if err != nil {
			return nil, fmt.Errorf("label: row %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

func resolveJustOne(v Justify, coord float64) (float64, error) {
	if !v.IsSet() {
		return 0.5, nil
	}
	if v.IsNumeric() {
		return v.Num(), nil
	}
	kw := v.Keyword()
	if f, ok := literalJust[kw]; ok {
		return f, nil
	}
	switch kw {
	case "inward":
		switch classify(coord) {
		case dirLow:
			return 0, nil
		case dirHigh:
			return 1, nil
		default:
			return 0.5, nil
		}
	case "outward":
		switch classify(coord) {
		case dirLow:
			return 1, nil
		case dirHigh:
			return 0, nil
		default:
			return 0.5, nil
		}
	}
	return 0, fmt.Errorf("unknown justification keyword %q", kw)
}
