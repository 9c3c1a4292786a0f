package label

// Measurer sizes formatted label text. It is implemented by the rendering
// backend, which owns the fonts and the markup shaping; the label core only
// relies on this contract when a box has to be fitted around text.
type Measurer interface {
	// MeasureLabel returns the extent of the formatted text in millimeters.
	MeasureLabel(text string, style TextStyle) (width, height float64, err error)
}

// BuildOptions injects optional collaborators into Build. The zero value
// builds instructions without text extents.
type BuildOptions struct {
	// Measurer, when set, sizes every label at build time so instructions
	// carry their text extent and bad markup fails the build instead of the
	// backend handoff.
	Measurer Measurer
}
