// Package layer is the public construction API for rich-text label layers.
// A Layer owns the row set, the per-layer defaults, the shared box
// parameters and the collaborator hooks (coordinate transform, position
// adjustment), and turns them into render instructions on every draw.
package layer

import (
	"errors"
	"math"

	"github.com/plotgrid/richlabel/binding"
	"github.com/plotgrid/richlabel/label"
	"github.com/plotgrid/richlabel/renderer"
)

// ErrPositionConflict is returned when both an explicit position adjuster
// and nudge offsets are supplied. Reported at construction, before any
// rendering is attempted.
var ErrPositionConflict = errors.New("layer: explicit position and nudge offsets are mutually exclusive")

// CoordTransform maps raw row coordinates into normalized panel space. The
// label core never transforms coordinates itself; this hook runs first.
type CoordTransform interface {
	Transform(x, y float64) (float64, float64)
}

// IdentityTransform passes coordinates through, for rows already in
// normalized panel space.
type IdentityTransform struct{}

func (IdentityTransform) Transform(x, y float64) (float64, float64) { return x, y }

// LinearTransform maps a data-space rectangle onto the unit square.
type LinearTransform struct {
	XMin, XMax float64
	YMin, YMax float64
}

func (t LinearTransform) Transform(x, y float64) (float64, float64) {
	return (x - t.XMin) / (t.XMax - t.XMin), (y - t.YMin) / (t.YMax - t.YMin)
}

// PositionAdjuster shifts a row's normalized position after the coordinate
// transform, e.g. to move labels off the points they annotate.
type PositionAdjuster interface {
	Adjust(x, y float64) (float64, float64)
}

// Nudge offsets every row by a fixed amount in normalized panel units.
type Nudge struct {
	X, Y float64
}

func (n Nudge) Adjust(x, y float64) (float64, float64) { return x + n.X, y + n.Y }

// Config assembles a layer. The zero value of every field is a usable
// default: identity transform, no position adjustment, stock box
// parameters, defaults inherited, fail fast on incomplete rows.
type Config struct {
	Rows []label.Row

	// Defaults fills unset aesthetics on every row. NoInherit suppresses
	// the merge, leaving only the built-in theme defaults.
	Defaults  label.Row
	NoInherit bool

	// Position and NudgeX/NudgeY are mutually exclusive ways to offset
	// labels from their anchors.
	Position       PositionAdjuster
	NudgeX, NudgeY float64

	Box   *label.BoxParameters
	Coord CoordTransform

	// Measurer sizes label text at build time so instructions carry their
	// extents. When nil, Draw falls back to a backend that implements
	// label.Measurer itself.
	Measurer label.Measurer

	// SkipMissing drops rows with missing position or label instead of
	// failing the draw.
	SkipMissing bool
	ShowLegend  bool
}

// Layer is an immutable label layer. Every draw builds a fresh instruction
// set; no state is carried between draw calls.
type Layer struct {
	rows        []label.Row
	defaults    label.Row
	position    PositionAdjuster
	box         label.BoxParameters
	coord       CoordTransform
	measurer    label.Measurer
	skipMissing bool
	showLegend  bool
}

// DefaultRow is the built-in theme: black text, white fill, 11pt plain
// face, 1.2 line height, centered justification.
func DefaultRow() label.Row {
	return label.Row{
		Color:      label.RGB(0, 0, 0),
		Fill:       label.RGB(255, 255, 255),
		FontFace:   "plain",
		FontSizePt: 11,
		LineHeight: 1.2,
	}
}

// New validates the configuration and builds a layer.
func New(cfg Config) (*Layer, error) {
	if cfg.Position != nil && (cfg.NudgeX != 0 || cfg.NudgeY != 0) {
		return nil, ErrPositionConflict
	}
	position := cfg.Position
	if position == nil && (cfg.NudgeX != 0 || cfg.NudgeY != 0) {
		position = Nudge{X: cfg.NudgeX, Y: cfg.NudgeY}
	}

	box := label.DefaultBoxParameters()
	if cfg.Box != nil {
		box = *cfg.Box
	}
	coord := cfg.Coord
	if coord == nil {
		coord = IdentityTransform{}
	}
	defaults := DefaultRow()
	if !cfg.NoInherit {
		defaults = mergeRow(cfg.Defaults, defaults)
	}

	rows := make([]label.Row, len(cfg.Rows))
	copy(rows, cfg.Rows)
	return &Layer{
		rows:        rows,
		defaults:    defaults,
		position:    position,
		box:         box,
		coord:       coord,
		measurer:    cfg.Measurer,
		skipMissing: cfg.SkipMissing,
		showLegend:  cfg.ShowLegend,
	}, nil
}

// Instructions resolves every row into a render instruction: defaults
// merge, label template interpolation, coordinate transform, position
// adjustment, then the core build. With SkipMissing, rows lacking a
// position or label are dropped first; otherwise the build fails fast on
// them.
func (l *Layer) Instructions() ([]label.Instruction, error) {
	return l.instructions(l.measurer)
}

func (l *Layer) instructions(m label.Measurer) ([]label.Instruction, error) {
	rows := make([]label.Row, 0, len(l.rows))
	for _, row := range l.rows {
		row = mergeRow(row, l.defaults)
		row.Label = binding.Interpolate(row.Label, row.Data)
		row.X, row.Y = l.coord.Transform(row.X, row.Y)
		if l.position != nil {
			row.X, row.Y = l.position.Adjust(row.X, row.Y)
		}
		if l.skipMissing && incomplete(row) {
			continue
		}
		rows = append(rows, row)
	}
	return label.BuildWithOptions(rows, l.box, label.BuildOptions{Measurer: m})
}

// Draw is the single synchronous handoff to the rendering backend. When no
// measurer was configured and the backend can size text itself, the
// instructions it receives carry their extents. Backend failures propagate
// verbatim.
func (l *Layer) Draw(r renderer.Renderer, panel renderer.Panel) ([]byte, error) {
	m := l.measurer
	if m == nil {
		if backend, ok := r.(label.Measurer); ok {
			m = backend
		}
	}
	instrs, err := l.instructions(m)
	if err != nil {
		return nil, err
	}
	return r.Render(instrs, l.box, panel)
}

// Key renders the legend key glyph when the layer participates in the
// legend; otherwise it returns nil bytes.
func (l *Layer) Key(kd renderer.KeyDrawer) ([]byte, error) {
	if !l.showLegend {
		return nil, nil
	}
	style, _ := label.NewStyleResolver().Resolve(l.defaults)
	return kd.DrawKey(style)
}

func incomplete(row label.Row) bool {
	return math.IsNaN(row.X) || math.IsNaN(row.Y) || row.Label == ""
}

// mergeRow fills unset fields of row from defaults.
func mergeRow(row, defaults label.Row) label.Row {
	if !row.Color.IsSet() {
		row.Color = defaults.Color
	}
	if !row.Fill.IsSet() {
		row.Fill = defaults.Fill
	}
	if !row.TextColor.IsSet() {
		row.TextColor = defaults.TextColor
	}
	if !row.OutlineColor.IsSet() {
		row.OutlineColor = defaults.OutlineColor
	}
	if row.Alpha == nil {
		row.Alpha = defaults.Alpha
	}
	if !row.HJust.IsSet() {
		row.HJust = defaults.HJust
	}
	if !row.VJust.IsSet() {
		row.VJust = defaults.VJust
	}
	if row.AngleDegrees == 0 {
		row.AngleDegrees = defaults.AngleDegrees
	}
	if row.FontFamily == "" {
		row.FontFamily = defaults.FontFamily
	}
	if row.FontFace == "" {
		row.FontFace = defaults.FontFace
	}
	if row.FontSizePt == 0 {
		row.FontSizePt = defaults.FontSizePt
	}
	if row.LineHeight == 0 {
		row.LineHeight = defaults.LineHeight
	}
	if row.OutlineWidthPt == 0 {
		row.OutlineWidthPt = defaults.OutlineWidthPt
	}
	return row
}
