package markup_test

import (
	"testing"

	"github.com/plotgrid/richlabel/markup"
)

func TestParsePlainText(t *testing.T) {
	lines, err := markup.Parse("hello world")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(lines) != 1 || len(lines[0]) != 1 {
		t.Fatalf("expected one line with one span, got %+v", lines)
	}
	sp := lines[0][0]
	if sp.Text != "hello world" || sp.Bold || sp.Italic || sp.Script != markup.ScriptNormal {
		t.Fatalf("unexpected span %+v", sp)
	}
}

func TestParseNestedStyles(t *testing.T) {
	lines, err := markup.Parse("a <b>bold <i>both</i></b> tail")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	spans := lines[0]
	if len(spans) != 4 {
		t.Fatalf("expected 4 spans, got %+v", spans)
	}
	if spans[0].Text != "a " || spans[0].Bold {
		t.Fatalf("span 0: %+v", spans[0])
	}
	if spans[1].Text != "bold " || !spans[1].Bold || spans[1].Italic {
		t.Fatalf("span 1: %+v", spans[1])
	}
	if spans[2].Text != "both" || !spans[2].Bold || !spans[2].Italic {
		t.Fatalf("span 2: %+v", spans[2])
	}
	if spans[3].Text != " tail" || spans[3].Bold {
		t.Fatalf("span 3: %+v", spans[3])
	}
}

func TestParseLineBreaks(t *testing.T) {
	for _, in := range []string{"first<br>second", "first<br/>second", "first\nsecond"} {
		lines, err := markup.Parse(in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", in, err)
		}
		if len(lines) != 2 {
			t.Fatalf("parse %q: expected 2 lines, got %+v", in, lines)
		}
		if lines[0][0].Text != "first" || lines[1][0].Text != "second" {
			t.Fatalf("parse %q: got %+v", in, lines)
		}
	}
}

func TestParseSubSup(t *testing.T) {
	lines, err := markup.Parse("x<sup>2</sup> + H<sub>2</sub>O")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	spans := lines[0]
	if len(spans) != 5 {
		t.Fatalf("expected 5 spans, got %+v", spans)
	}
	if spans[1].Script != markup.ScriptSuper || spans[1].Text != "2" {
		t.Fatalf("sup span: %+v", spans[1])
	}
	if spans[3].Script != markup.ScriptSub || spans[3].Text != "2" {
		t.Fatalf("sub span: %+v", spans[3])
	}
}

func TestParseSpanColor(t *testing.T) {
	lines, err := markup.Parse(`warm <span style='color:#ff0000'>hot</span>`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	spans := lines[0]
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %+v", spans)
	}
	if spans[0].Color != "" {
		t.Fatalf("unstyled span has color %q", spans[0].Color)
	}
	if spans[1].Color != "#ff0000" || spans[1].Text != "hot" {
		t.Fatalf("colored span: %+v", spans[1])
	}
}

func TestParseEntities(t *testing.T) {
	lines, err := markup.Parse("1 &lt; 2 &amp; 3 &gt; 2")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := lines[0][0].Text; got != "1 < 2 & 3 > 2" {
		t.Fatalf("entities: got %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"<b>unclosed",
		"<b>mismatch</i>",
		"<marquee>nope</marquee>",
	}
	for _, in := range cases {
		if _, err := markup.Parse(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
