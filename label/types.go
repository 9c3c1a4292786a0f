package label

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// This file defines the row input, the shared box parameters and the fully
// resolved render instruction handed to the drawing backend.

// Color is an 8-bit RGBA color. The zero value (A == 0) means "unset" and is
// how optional per-row overrides are detected.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// RGB builds a fully opaque color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 255} }

// IsSet reports whether the color carries any opacity at all.
func (c Color) IsSet() bool { return c.A != 0 }

// WithAlpha scales the color's alpha channel by the factor in [0,1]. The hue
// is untouched; alpha 1 is the identity.
func (c Color) WithAlpha(alpha float64) Color {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	c.A = uint8(math.Round(float64(c.A) * alpha))
	return c
}

// ParseHex parses #RGB, #RRGGBB or #RRGGBBAA.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return Color{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// Justify is either a numeric anchor fraction in [0,1] or a symbolic keyword
// (left, center, right, bottom, middle, top, inward, outward). The zero value
// is "unset"; callers substitute a default before resolution.
type Justify struct {
	num     float64
	keyword string
	numeric bool
}

// JustNum wraps a numeric justification fraction.
func JustNum(v float64) Justify { return Justify{num: v, numeric: true} }

// JustKeyword wraps a symbolic justification keyword.
func JustKeyword(k string) Justify { return Justify{keyword: strings.ToLower(k)} }

func (j Justify) IsSet() bool     { return j.numeric || j.keyword != "" }
func (j Justify) IsNumeric() bool { return j.numeric }
func (j Justify) Num() float64    { return j.num }
func (j Justify) Keyword() string { return j.keyword }

func (j Justify) String() string {
	if j.numeric {
		return strconv.FormatFloat(j.num, 'g', -1, 64)
	}
	return j.keyword
}

// UnmarshalJSON accepts either a JSON number or a keyword string, so rows
// can mix "hjust": 0.2 and "hjust": "inward".
func (j *Justify) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*j = Justify{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var kw string
		if err := json.Unmarshal(data, &kw); err != nil {
			return err
		}
		*j = JustKeyword(kw)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*j = JustNum(v)
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (j Justify) MarshalJSON() ([]byte, error) {
	if j.numeric {
		return json.Marshal(j.num)
	}
	if j.keyword == "" {
		return []byte("null"), nil
	}
	return json.Marshal(j.keyword)
}

// Row is one label to render. X and Y are normalized panel coordinates
// (post coordinate-transform). Label may contain the inline markup subset;
// the core passes it through untouched.
type Row struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Label        string  `json:"label"`
	AngleDegrees float64 `json:"angle,omitempty"`
	HJust        Justify `json:"hjust,omitempty"`
	VJust        Justify `json:"vjust,omitempty"`

	// Alpha is the row opacity in [0,1]; nil means unset, which is treated
	// as fully opaque. An explicit 0 is fully transparent.
	Alpha *float64 `json:"alpha,omitempty"`

	// Color is the generic color aesthetic. TextColor and OutlineColor are
	// optional overrides that fall back to Color when unset; Fill never
	// falls back.
	Color        Color `json:"colour"`
	Fill         Color `json:"fill"`
	TextColor    Color `json:"textColour,omitempty"`
	OutlineColor Color `json:"labelColour,omitempty"`

	OutlineWidthPt float64 `json:"labelSize,omitempty"`
	FontFamily     string  `json:"family,omitempty"`
	FontFace       string  `json:"fontface,omitempty"` // plain/bold/italic/bold italic
	FontSizePt     float64 `json:"size,omitempty"`
	LineHeight     float64 `json:"lineheight,omitempty"`

	// Data holds optional per-row values referenced by ${path} placeholders
	// in Label.
	Data map[string]any `json:"data,omitempty"`
}

// BoxParameters is shared by every row of one draw call. All three fields
// are fixed physical lengths; they never rescale with the data axes.
type BoxParameters struct {
	Padding      Inset  `json:"padding"`
	Margin       Inset  `json:"margin"`
	CornerRadius Length `json:"cornerRadius"`
}

// DefaultBoxParameters matches the stock label box: a quarter line of
// padding, no margin, and a 0.15-line corner radius.
func DefaultBoxParameters() BoxParameters {
	return BoxParameters{
		Padding:      UniformInset(Lines(0.25)),
		Margin:       UniformInset(Lines(0)),
		CornerRadius: Lines(0.15),
	}
}

// TextStyle is the resolved paint style for the label text. SizeMM is the
// font size already scaled to millimeters.
type TextStyle struct {
	Color      Color   `json:"color"`
	FontFamily string  `json:"family"`
	FontFace   string  `json:"fontface"`
	SizeMM     float64 `json:"sizeMm"`
	LineHeight float64 `json:"lineHeight"`
}

// BoxStyle is the resolved paint style for the background box.
type BoxStyle struct {
	Stroke        Color   `json:"stroke"`
	StrokeWidthMM float64 `json:"strokeWidthMm"`
	Fill          Color   `json:"fill"`
}

// Instruction is one fully resolved label. It is built fresh on every draw
// call, immutable once built, and discarded after the backend handoff. Box
// points at the parameters shared by the whole batch.
type Instruction struct {
	X            float64        `json:"x"`
	Y            float64        `json:"y"`
	AngleDegrees float64        `json:"angle"`
	HJust        float64        `json:"hjust"`
	VJust        float64        `json:"vjust"`
	Text         string         `json:"text"`
	TextStyle    TextStyle      `json:"textStyle"`
	BoxStyle     BoxStyle       `json:"boxStyle"`
	Box          *BoxParameters `json:"box"`

	// TextWidthMM and TextHeightMM are the measured extent of Text. They are
	// zero unless a Measurer was supplied to the build.
	TextWidthMM  float64 `json:"textWidthMm,omitempty"`
	TextHeightMM float64 `json:"textHeightMm,omitempty"`
}

// MissingFieldError reports a row that reached Build without a required
// field. Rows with missing values must be filtered upstream (the
// skip-missing policy); Build itself fails fast.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("label: row %d is missing required field %q", e.Index, e.Field)
}
