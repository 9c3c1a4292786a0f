// Package canvasrenderer draws label instructions via github.com/tdewolff/canvas.
// It is the batch-rendering backend the label core hands its instructions to,
// and it owns everything the core treats as external: fonts, markup shaping,
// text measurement and final unit conversion to device resolution.
package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/plotgrid/richlabel/label"
	"github.com/plotgrid/richlabel/markup"
	"github.com/plotgrid/richlabel/renderer"
)

const (
	// FormatPDF and FormatPNG select the output encoding.
	FormatPDF = "pdf"
	FormatPNG = "png"

	defaultDPMM = 11.811 // 300 dpi

	defaultLineHeight = 1.2
	scriptSizeFactor  = 0.7
	supShiftFactor    = 0.4
	subShiftFactor    = -0.2

	keySideMM = 12.0
)

// Renderer draws render instructions onto a canvas and encodes the result.
type Renderer struct {
	format string
	dpmm   float64

	// injected font resources by family name
	fontBlobs map[string][]byte
	fontPaths map[string]string

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer  = (*Renderer)(nil)
	_ renderer.KeyDrawer = (*Renderer)(nil)
	_ label.Measurer     = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
}

// Options configures the canvas renderer.
type Options struct {
	Format string  // "pdf" (default) or "png"
	DPMM   float64 // raster resolution for PNG output
	Fonts  map[string]Resource
}

// Resource provides a font either by Bytes or by Path, keyed by family name.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a PDF renderer with system-font lookup only.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected font resources.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		format:       strings.ToLower(opts.Format),
		dpmm:         opts.DPMM,
		fontBlobs:    map[string][]byte{},
		fontPaths:    map[string]string{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.format == "" {
		r.format = FormatPDF
	}
	if r.dpmm <= 0 {
		r.dpmm = defaultDPMM
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			r.fontPaths[name] = res.Path
		}
	}
	return r
}

// Render draws the full instruction batch onto one panel-sized canvas and
// returns the encoded bytes. This is a single synchronous handoff; the first
// backend error aborts the whole draw with no partial output.
func (r *Renderer) Render(instrs []label.Instruction, box label.BoxParameters, panel renderer.Panel) ([]byte, error) {
	if panel.Width <= 0 || panel.Height <= 0 {
		return nil, fmt.Errorf("canvasrenderer: invalid panel %gx%g", panel.Width, panel.Height)
	}
	c := canvas.New(panel.Width, panel.Height)
	ctx := canvas.NewContext(c)
	for i := range instrs {
		if err := r.drawInstruction(ctx, &instrs[i], box, panel); err != nil {
			return nil, fmt.Errorf("canvasrenderer: label %d: %w", i, err)
		}
	}
	return r.encode(c)
}

// DrawKey renders the representative legend key glyph: the default box with
// the fixed sample text "a", centered on a small fixed canvas.
func (r *Renderer) DrawKey(style label.TextStyle) ([]byte, error) {
	instr := label.Instruction{
		X:         0.5,
		Y:         0.5,
		HJust:     0.5,
		VJust:     0.5,
		Text:      "a",
		TextStyle: style,
		BoxStyle: label.BoxStyle{
			Stroke:        style.Color,
			StrokeWidthMM: 0.25 * label.PtToMm,
			Fill:          label.RGB(255, 255, 255),
		},
	}
	panel := renderer.Panel{Width: keySideMM, Height: keySideMM}
	c := canvas.New(panel.Width, panel.Height)
	ctx := canvas.NewContext(c)
	if err := r.drawInstruction(ctx, &instr, label.DefaultBoxParameters(), panel); err != nil {
		return nil, fmt.Errorf("canvasrenderer: legend key: %w", err)
	}
	return r.encode(c)
}

// MeasureLabel implements label.Measurer: the extent of the formatted text
// in millimeters, before padding.
func (r *Renderer) MeasureLabel(text string, style label.TextStyle) (float64, float64, error) {
	_, w, h, err := r.layoutMarkup(text, style)
	return w, h, err
}

// measuredSpan is one markup span with its resolved face and advance.
type measuredSpan struct {
	text  string
	face  *canvas.FontFace
	width float64
	dy    float64 // baseline shift for sub/superscript
}

type measuredLine struct {
	spans []measuredSpan
	width float64
}

// layoutMarkup parses the label markup and measures every span, returning
// the lines plus the total text extent in millimeters.
func (r *Renderer) layoutMarkup(text string, style label.TextStyle) ([]measuredLine, float64, float64, error) {
	parsed, err := markup.Parse(text)
	if err != nil {
		return nil, 0, 0, err
	}
	lineMM := lineAdvance(style)

	lines := make([]measuredLine, 0, len(parsed))
	maxW := 0.0
	for _, ln := range parsed {
		var ml measuredLine
		for _, sp := range ln {
			face, err := r.spanFace(sp, style)
			if err != nil {
				return nil, 0, 0, err
			}
			w := face.TextWidth(sp.Text)
			ml.spans = append(ml.spans, measuredSpan{
				text:  sp.Text,
				face:  face,
				width: w,
				dy:    scriptShift(sp.Script, style.SizeMM),
			})
			ml.width += w
		}
		maxW = math.Max(maxW, ml.width)
		lines = append(lines, ml)
	}
	return lines, maxW, float64(len(lines)) * lineMM, nil
}

// lineAscent is the tallest ascent among the spans of a line, so that
// mixed-size spans (sub/superscript) share one baseline.
func lineAscent(ln measuredLine) float64 {
	a := 0.0
	for _, sp := range ln.spans {
		a = math.Max(a, sp.face.Metrics().Ascent)
	}
	return a
}

func lineAdvance(style label.TextStyle) float64 {
	lh := style.LineHeight
	if lh <= 0 {
		lh = defaultLineHeight
	}
	return style.SizeMM * lh
}

func scriptShift(s markup.Script, sizeMM float64) float64 {
	switch s {
	case markup.ScriptSuper:
		return supShiftFactor * sizeMM
	case markup.ScriptSub:
		return subShiftFactor * sizeMM
	default:
		return 0
	}
}

// spanFace resolves the font face for one span: the label's base style plus
// the span's bold/italic/script/color modifiers.
func (r *Renderer) spanFace(sp markup.Span, style label.TextStyle) (*canvas.FontFace, error) {
	sizeMM := style.SizeMM
	if sp.Script != markup.ScriptNormal {
		sizeMM *= scriptSizeFactor
	}
	col := style.Color
	if sp.Color != "" {
		tint, err := label.ParseHex(sp.Color)
		if err != nil {
			return nil, err
		}
		col = tint.WithAlpha(float64(style.Color.A) / 255.0)
	}

	fontStyle := parseFontFace(style.FontFace)
	if sp.Bold {
		fontStyle |= canvas.FontBold
	}
	if sp.Italic {
		fontStyle |= canvas.FontItalic
	}

	family, err := r.ensureFontFamily(style.FontFamily, fontStyle)
	if err != nil {
		return nil, err
	}
	return family.Face(sizeMM*label.MmToPt, colorFromLabel(col), fontStyle, canvas.FontNormal), nil
}

func (r *Renderer) drawInstruction(ctx *canvas.Context, instr *label.Instruction, box label.BoxParameters, panel renderer.Panel) error {
	style := instr.TextStyle
	scale := label.RenderScale{LineHeightMM: lineAdvance(style)}
	if instr.Box != nil {
		box = *instr.Box
	}
	pad := box.Padding.Resolve(scale)
	margin := box.Margin.Resolve(scale)
	radius := box.CornerRadius.Resolve(scale)

	lines, textW, textH, err := r.layoutMarkup(instr.Text, style)
	if err != nil {
		return err
	}

	ax := instr.X * panel.Width
	ay := instr.Y * panel.Height
	pl := placeBox(ax, ay, textW, textH, pad, margin, instr.HJust, instr.VJust)

	if instr.AngleDegrees != 0 {
		// rotate about the anchor, not the box corner
		ctx.SetView(canvas.Identity.
			Translate(ax, ay).
			Rotate(instr.AngleDegrees).
			Translate(-ax, -ay))
		defer ctx.SetView(canvas.Identity)
	}

	r.drawBox(ctx, instr.BoxStyle, pl, radius)
	r.drawLines(ctx, lines, pl, textW, textH, style, instr.HJust)
	return nil
}

func (r *Renderer) drawBox(ctx *canvas.Context, style label.BoxStyle, pl boxPlacement, radius float64) {
	if !style.Fill.IsSet() && (!style.Stroke.IsSet() || style.StrokeWidthMM <= 0) {
		return
	}
	if style.Fill.IsSet() {
		ctx.SetFillColor(colorFromLabel(style.Fill))
	} else {
		ctx.SetFillColor(color.RGBA{})
	}
	if style.Stroke.IsSet() && style.StrokeWidthMM > 0 {
		ctx.SetStrokeColor(colorFromLabel(style.Stroke))
		ctx.SetStrokeWidth(style.StrokeWidthMM)
	} else {
		ctx.SetStrokeColor(color.RGBA{})
		ctx.SetStrokeWidth(0)
	}

	// a radius larger than half the box degenerates the path
	radius = math.Min(radius, math.Min(pl.BoxW, pl.BoxH)/2)
	var path *canvas.Path
	if radius > 0 {
		path = canvas.RoundedRectangle(pl.BoxW, pl.BoxH, radius)
	} else {
		path = canvas.Rectangle(pl.BoxW, pl.BoxH)
	}
	ctx.DrawPath(pl.BoxX, pl.BoxY, path)
}

// drawLines paints the measured spans line by line, top line first. Lines
// are aligned inside the text block by the same hjust fraction that anchors
// the box.
func (r *Renderer) drawLines(ctx *canvas.Context, lines []measuredLine, pl boxPlacement, textW, textH float64, style label.TextStyle, hjust float64) {
	lineMM := lineAdvance(style)
	for i, ln := range lines {
		if len(ln.spans) == 0 {
			continue
		}
		lineTop := pl.TextY + textH - float64(i)*lineMM
		baseline := lineTop - lineAscent(ln)
		x := pl.TextX + hjust*(textW-ln.width)
		for _, sp := range ln.spans {
			tl := canvas.NewTextLine(sp.face, sp.text, canvas.Left)
			ctx.DrawText(x, baseline+sp.dy, tl)
			x += sp.width
		}
	}
}

func (r *Renderer) encode(c *canvas.Canvas) ([]byte, error) {
	var buf bytes.Buffer
	switch r.format {
	case FormatPDF:
		writer := pdf.New(&buf, c.W, c.H, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("canvasrenderer: write pdf: %w", err)
		}
	case FormatPNG:
		if err := renderers.PNG(canvas.DPMM(r.dpmm))(&buf, c); err != nil {
			return nil, fmt.Errorf("canvasrenderer: write png: %w", err)
		}
	default:
		return nil, fmt.Errorf("canvasrenderer: unknown format %q", r.format)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) ensureFontFamily(name string, style canvas.FontStyle) (*canvas.FontFamily, error) {
	key := fontCacheKey(name, style)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, nil
	}

	familyName := name
	if familyName == "" {
		familyName = "sans"
	}
	family := canvas.NewFontFamily(familyName)
	if err := r.loadFontIntoFamily(family, name, style); err != nil {
		fallback, fbErr := r.fallback(style)
		if fbErr != nil {
			return nil, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback}
		return fallback, nil
	}
	r.fontFamilies[key] = &fontFamilyEntry{family: family}
	return family, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, name string, style canvas.FontStyle) error {
	if blob, ok := r.fontBlobs[name]; ok {
		return family.LoadFont(blob, 0, style)
	}
	if path, ok := r.fontPaths[name]; ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("canvasrenderer: read font %s: %w", path, err)
		}
		return family.LoadFont(data, 0, style)
	}
	if name == "" {
		return fmt.Errorf("canvasrenderer: no font family requested")
	}
	return family.LoadSystemFont(name, style)
}

var fallbackSystemFonts = []string{"DejaVu Sans", "Liberation Sans", "Arial", "Helvetica"}

func (r *Renderer) fallback(style canvas.FontStyle) (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	family := canvas.NewFontFamily("richlabel-fallback")
	for _, name := range fallbackSystemFonts {
		if err := family.LoadSystemFont(name, style); err == nil {
			r.fallbackFamily = family
			return family, nil
		}
	}
	return nil, fmt.Errorf("canvasrenderer: no usable system font found")
}

// parseFontFace maps the fontface aesthetic (plain/bold/italic/bold italic)
// to a canvas font style.
func parseFontFace(face string) canvas.FontStyle {
	s := strings.ToLower(strings.TrimSpace(face))
	result := canvas.FontRegular
	if strings.Contains(s, "bold") {
		result = canvas.FontBold
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(name string, style canvas.FontStyle) string {
	return fmt.Sprintf("%s|%d", name, style)
}

func colorFromLabel(c label.Color) color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
