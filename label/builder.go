package label

import (
	"fmt"
	"math"
)

// Build assembles one render instruction per row: justification, style and
// the untouched position, rotation and label text, plus a reference to the
// box parameters shared by the whole batch. Output length and order always
// match the input. Rows with missing required fields must have been filtered
// upstream; Build fails fast on the first one it sees.
func Build(rows []Row, box BoxParameters) ([]Instruction, error) {
	return BuildWithOptions(rows, box, BuildOptions{})
}

// BuildWithOptions is Build with injected collaborators. When a Measurer is
// supplied, every instruction additionally carries its text extent and a
// measurement failure aborts the whole build.
func BuildWithOptions(rows []Row, box BoxParameters, opts BuildOptions) ([]Instruction, error) {
	if err := checkComplete(rows); err != nil {
		return nil, err
	}

	hjusts := make([]Justify, len(rows))
	vjusts := make([]Justify, len(rows))
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, row := range rows {
		hjusts[i] = row.HJust
		vjusts[i] = row.VJust
		xs[i] = row.X
		ys[i] = row.Y
	}
	hs, err := ResolveJust(hjusts, xs)
	if err != nil {
		return nil, err
	}
	vs, err := ResolveJust(vjusts, ys)
	if err != nil {
		return nil, err
	}

	shared := box
	resolver := NewStyleResolver()
	out := make([]Instruction, len(rows))
	for i, row := range rows {
		text, boxStyle := resolver.Resolve(row)
		out[i] = Instruction{
			X:            row.X,
			Y:            row.Y,
			AngleDegrees: row.AngleDegrees,
			HJust:        hs[i],
			VJust:        vs[i],
			Text:         row.Label,
			TextStyle:    text,
			BoxStyle:     boxStyle,
			Box:          &shared,
		}
		if opts.Measurer != nil {
			w, h, err := opts.Measurer.MeasureLabel(row.Label, text)
			if err != nil {
				return nil, fmt.Errorf("label: measure row %d: %w", i, err)
			}
			out[i].TextWidthMM = w
			out[i].TextHeightMM = h
		}
	}
	return out, nil
}

func checkComplete(rows []Row) error {
	for i, row := range rows {
		switch {
		case math.IsNaN(row.X):
			return &MissingFieldError{Index: i, Field: "x"}
		case math.IsNaN(row.Y):
			return &MissingFieldError{Index: i, Field: "y"}
		case row.Label == "":
			return &MissingFieldError{Index: i, Field: "label"}
		}
	}
	return nil
}
