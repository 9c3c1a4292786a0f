package label

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"testing"
)

func testRow(x, y float64, text string) Row {
	return Row{X: x, Y: y, Label: text, Color: RGB(0, 0, 0), Fill: RGB(255, 255, 255)}
}

// Output length always equals input length and order is preserved.
func TestBuildRowCountInvariant(t *testing.T) {
	rows := make([]Row, 7)
	for i := range rows {
		rows[i] = testRow(float64(i)/10, 0.5, "label "+strconv.Itoa(i))
	}
	instrs, err := Build(rows, DefaultBoxParameters())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(instrs) != len(rows) {
		t.Fatalf("instruction count: got %d want %d", len(instrs), len(rows))
	}
	for i, instr := range instrs {
		if instr.Text != rows[i].Label {
			t.Fatalf("order not preserved at %d: got %q want %q", i, instr.Text, rows[i].Label)
		}
	}
}

func TestBuildResolvesPerRowJustification(t *testing.T) {
	rows := []Row{
		testRow(0.2, 0.5, "a"),
		testRow(0.5, 0.5, "b"),
		testRow(0.8, 0.5, "c"),
	}
	rows[0].HJust = JustKeyword("inward")
	rows[1].HJust = JustNum(0.1)
	rows[2].HJust = JustKeyword("outward")

	instrs, err := Build(rows, DefaultBoxParameters())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []float64{0, 0.1, 0}
	for i := range want {
		if instrs[i].HJust != want[i] {
			t.Fatalf("hjust %d: got %g want %g", i, instrs[i].HJust, want[i])
		}
	}
}

// End-to-end scenario from the contract: x=0.9 outward resolves away from
// the center, y=0.5 middle stays centered.
func TestBuildOutwardHighRow(t *testing.T) {
	row := testRow(0.9, 0.5, "peak")
	row.HJust = JustKeyword("outward")
	row.VJust = JustKeyword("middle")
	instrs, err := Build([]Row{row}, DefaultBoxParameters())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if instrs[0].HJust != 0 {
		t.Fatalf("outward at 0.9 must anchor the far edge: got hjust %g want 0", instrs[0].HJust)
	}
	if instrs[0].VJust != 0.5 {
		t.Fatalf("middle vjust: got %g want 0.5", instrs[0].VJust)
	}
}

func TestBuildFailsFastOnMissingFields(t *testing.T) {
	cases := []struct {
		name  string
		row   Row
		field string
	}{
		{"nan x", testRow(math.NaN(), 0.5, "a"), "x"},
		{"nan y", testRow(0.5, math.NaN(), "a"), "y"},
		{"empty label", testRow(0.5, 0.5, ""), "label"},
	}
	for _, c := range cases {
		_, err := Build([]Row{testRow(0.1, 0.1, "ok"), c.row}, DefaultBoxParameters())
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("%s: got %T, want *MissingFieldError", c.name, err)
		}
		if missing.Index != 1 || missing.Field != c.field {
			t.Fatalf("%s: got row %d field %q, want row 1 field %q", c.name, missing.Index, missing.Field, c.field)
		}
	}
}

// All instructions of one build share the same box parameters.
func TestBuildSharesBoxParameters(t *testing.T) {
	rows := []Row{testRow(0.1, 0.1, "a"), testRow(0.9, 0.9, "b")}
	instrs, err := Build(rows, DefaultBoxParameters())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if instrs[0].Box == nil || instrs[0].Box != instrs[1].Box {
		t.Fatalf("box parameters must be shared across the batch")
	}
}

func TestBuildResolvesStyles(t *testing.T) {
	row := testRow(0.5, 0.5, "styled")
	row.TextColor = RGB(200, 0, 0)
	row.FontSizePt = 10
	instrs, err := Build([]Row{row}, DefaultBoxParameters())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if instrs[0].TextStyle.Color != RGB(200, 0, 0) {
		t.Fatalf("text style color: got %+v", instrs[0].TextStyle.Color)
	}
	if math.Abs(instrs[0].TextStyle.SizeMM-10*PtToMm) > 1e-9 {
		t.Fatalf("text style size: got %g", instrs[0].TextStyle.SizeMM)
	}
}

// stubMeasurer sizes every label proportionally to its length, recording the
// styles it was handed.
type stubMeasurer struct {
	styles []TextStyle
	err    error
}

func (m *stubMeasurer) MeasureLabel(text string, style TextStyle) (float64, float64, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	m.styles = append(m.styles, style)
	return float64(len(text)) * 2, 5, nil
}

func TestBuildWithMeasurerRecordsExtents(t *testing.T) {
	rows := []Row{testRow(0.1, 0.1, "ab"), testRow(0.9, 0.9, "abcd")}
	rows[1].FontSizePt = 10
	m := &stubMeasurer{}
	instrs, err := BuildWithOptions(rows, DefaultBoxParameters(), BuildOptions{Measurer: m})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if instrs[0].TextWidthMM != 4 || instrs[1].TextWidthMM != 8 {
		t.Fatalf("text widths: got %g, %g want 4, 8", instrs[0].TextWidthMM, instrs[1].TextWidthMM)
	}
	if instrs[0].TextHeightMM != 5 {
		t.Fatalf("text height: got %g want 5", instrs[0].TextHeightMM)
	}
	if len(m.styles) != 2 || math.Abs(m.styles[1].SizeMM-10*PtToMm) > 1e-9 {
		t.Fatalf("measurer must see the resolved style: got %+v", m.styles)
	}
}

func TestBuildWithoutMeasurerLeavesExtentsZero(t *testing.T) {
	instrs, err := Build([]Row{testRow(0.5, 0.5, "a")}, DefaultBoxParameters())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if instrs[0].TextWidthMM != 0 || instrs[0].TextHeightMM != 0 {
		t.Fatalf("extents without a measurer: got %g x %g want zero", instrs[0].TextWidthMM, instrs[0].TextHeightMM)
	}
}

func TestBuildMeasurerErrorAbortsBuild(t *testing.T) {
	wantErr := errors.New("no face for family")
	m := &stubMeasurer{err: wantErr}
	_, err := BuildWithOptions([]Row{testRow(0.5, 0.5, "a")}, DefaultBoxParameters(), BuildOptions{Measurer: m})
	if !errors.Is(err, wantErr) {
		t.Fatalf("measure failure must abort the build: got %v", err)
	}
}

// Rows arrive as JSON in the CLI path; hjust/vjust accept numbers and
// keywords alike.
func TestJustifyJSON(t *testing.T) {
	var row Row
	if err := json.Unmarshal([]byte(`{"x":0.2,"y":0.8,"label":"a","hjust":"inward","vjust":0.25}`), &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}
	if row.HJust.Keyword() != "inward" {
		t.Fatalf("hjust keyword: got %q", row.HJust.Keyword())
	}
	if !row.VJust.IsNumeric() || row.VJust.Num() != 0.25 {
		t.Fatalf("vjust numeric: got %+v", row.VJust)
	}

	out, err := json.Marshal(row.HJust)
	if err != nil {
		t.Fatalf("marshal justify: %v", err)
	}
	if string(out) != `"inward"` {
		t.Fatalf("marshal justify: got %s", out)
	}
}
