package label

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe types for the two coordinate spaces the label
// pipeline has to keep apart: row positions live in normalized panel
// coordinates, while padding, margin and corner radius are fixed physical
// lengths. A Length never converts implicitly; absolute units convert via To,
// and line-relative units resolve only against a RenderScale at draw time.

// Unit is the unit a Length was specified in.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers
	UnitMM               // millimeters
	UnitPT               // points
	UnitLine             // line-units, relative to the base line height
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitPT:
		return "pt"
	case UnitLine:
		return "lines"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Mm, Pt and Lines are shorthand Length constructors.
func Mm(v float64) Length    { return Length{Value: v, Unit: UnitMM} }
func Pt(v float64) Length    { return Length{Value: v, Unit: UnitPT} }
func Lines(v float64) Length { return Length{Value: v, Unit: UnitLine} }

func (l Length) IsZero() bool { return l.Value == 0 }

// To converts between the absolute units. Line-units have no absolute
// equivalent; converting them requires a RenderScale (see Resolve).
func (l Length) To(target Unit) float64 {
	switch l.Unit {
	case UnitMM:
		if target == UnitPT {
			return l.Value * MmToPt
		}
		return l.Value
	case UnitPT:
		if target == UnitPT {
			return l.Value
		}
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// RenderScale carries the device-time context needed to resolve relative
// units. LineHeightMM is the base line height (font size times line-height
// factor) in millimeters.
type RenderScale struct {
	LineHeightMM float64
}

// Resolve converts the length to millimeters using scale for line-units.
func (l Length) Resolve(scale RenderScale) float64 {
	if l.Unit == UnitLine {
		return l.Value * scale.LineHeightMM
	}
	return l.ToMM()
}

// ParseLength parses strings like "2mm", "6pt", "0.25lines". A bare number
// is taken as millimeters.
func ParseLength(value string) (Length, error) {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return Length{}, fmt.Errorf("empty length")
	}
	unit := UnitMM
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"lines", UnitLine}, {"line", UnitLine}, {"mm", UnitMM}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// Inset is a 4-sided length, used for box padding and margin.
type Inset struct {
	Top    Length `json:"top"`
	Right  Length `json:"right"`
	Bottom Length `json:"bottom"`
	Left   Length `json:"left"`
}

// UniformInset gives every side the same length.
func UniformInset(l Length) Inset {
	return Inset{Top: l, Right: l, Bottom: l, Left: l}
}

// ResolvedInset is an Inset converted to millimeters.
type ResolvedInset struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Resolve converts all four sides to millimeters.
func (in Inset) Resolve(scale RenderScale) ResolvedInset {
	return ResolvedInset{
		Top:    in.Top.Resolve(scale),
		Right:  in.Right.Resolve(scale),
		Bottom: in.Bottom.Resolve(scale),
		Left:   in.Left.Resolve(scale),
	}
}
