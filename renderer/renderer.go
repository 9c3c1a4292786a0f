// Package renderer defines the boundary between the label core and the
// drawing backend.
package renderer

import "github.com/plotgrid/richlabel/label"

// Panel is the drawable panel area in millimeters. Normalized row
// coordinates map onto it at draw time.
type Panel struct {
	Width  float64
	Height float64
}

// Renderer receives the full instruction batch plus the shared box
// parameters in one synchronous call and returns the rendered bytes (for
// example a PDF or PNG). Backend failures propagate to the caller untouched.
type Renderer interface {
	Render(instrs []label.Instruction, box label.BoxParameters, panel Panel) ([]byte, error)
}

// KeyDrawer renders the single representative legend key glyph: a fixed box
// with fixed sample text, painted with the given text style.
type KeyDrawer interface {
	DrawKey(style label.TextStyle) ([]byte, error)
}
