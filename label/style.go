package label

import "math"

// Style resolution: merge per-row overrides with their fallbacks and apply
// the row alpha, producing final paint styles. Pure per-row transform.

// StyleResolver scales point-sized inputs (font size, outline width) to the
// backend unit convention with an explicit multiplicative constant instead
// of an implicit global.
type StyleResolver struct {
	PtToUnit float64
}

// NewStyleResolver uses the pt-to-mm constant shared with the rest of the
// plotting system.
func NewStyleResolver() StyleResolver {
	return StyleResolver{PtToUnit: PtToMm}
}

// ResolveStyle resolves one row with the default pt-to-mm scaling.
func ResolveStyle(row Row) (TextStyle, BoxStyle) {
	return NewStyleResolver().Resolve(row)
}

// Resolve produces the text and box paint styles for one row.
// Text color falls back to the generic color, as does the box outline
// color; the fill has its own default and never falls back.
func (r StyleResolver) Resolve(row Row) (TextStyle, BoxStyle) {
	alpha := 1.0
	if row.Alpha != nil && !math.IsNaN(*row.Alpha) {
		alpha = *row.Alpha
	}

	text := TextStyle{
		Color:      firstColor(row.TextColor, row.Color).WithAlpha(alpha),
		FontFamily: row.FontFamily,
		FontFace:   row.FontFace,
		SizeMM:     row.FontSizePt * r.PtToUnit,
		LineHeight: row.LineHeight,
	}
	box := BoxStyle{
		Stroke:        firstColor(row.OutlineColor, row.Color).WithAlpha(alpha),
		StrokeWidthMM: row.OutlineWidthPt * r.PtToUnit,
		Fill:          row.Fill.WithAlpha(alpha),
	}
	return text, box
}

// firstColor returns the first set color in priority order.
func firstColor(colors ...Color) Color {
	for _, c := range colors {
		if c.IsSet() {
			return c
		}
	}
	return Color{}
}
