// Package markup parses the small inline HTML-like subset allowed in label
// text into lines of styled spans. Supported tags: <b>, <strong>, <i>, <em>,
// <sub>, <sup>, <span style='color:#rrggbb'> and <br>. Anything else is a
// parse error; the label core never calls this package, only the rendering
// backend does.
package markup

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	markupLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "BreakTag", Pattern: `<[Bb][Rr]\s*/?>`},
		{Name: "CloseTag", Pattern: `</[A-Za-z]+\s*>`},
		{Name: "OpenTag", Pattern: `<[A-Za-z]+(?:\s+[^<>]*)?>`},
		{Name: "Text", Pattern: `[^<]+`},
	})

	markupParser = participle.MustBuild[document](
		participle.Lexer(markupLexer),
	)
)

// document is the root AST node for a markup string.
type document struct {
	Nodes []*node `parser:"@@*"`
}

// node is a text run, a line break, or a styled element.
type node struct {
	Break   bool     `parser:"  @BreakTag"`
	Element *element `parser:"| @@"`
	Text    string   `parser:"| @Text"`
}

// element is an open tag, nested content and the matching close tag.
type element struct {
	Open     string  `parser:"@OpenTag"`
	Children []*node `parser:"@@*"`
	Close    string  `parser:"@CloseTag"`
}

// Script marks sub/superscript spans.
type Script int

const (
	ScriptNormal Script = iota
	ScriptSub
	ScriptSuper
)

// Span is a run of text with uniform styling. Color, when non-empty, is a
// hex color overriding the label text color for this run.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Script Script
	Color  string
}

// Line is one visual line of spans.
type Line []Span

// Parse converts a markup string to lines of styled spans. Explicit "\n"
// and <br> both break lines.
func Parse(s string) ([]Line, error) {
	doc, err := markupParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("markup: %w", err)
	}
	st := &builder{lines: []Line{{}}}
	if err := st.walk(doc.Nodes, spanState{}); err != nil {
		return nil, err
	}
	return st.lines, nil
}

type spanState struct {
	bold   bool
	italic bool
	script Script
	color  string
}

type builder struct {
	lines []Line
}

func (b *builder) walk(nodes []*node, st spanState) error {
	for _, n := range nodes {
		switch {
		case n.Break:
			b.lines = append(b.lines, Line{})
		case n.Element != nil:
			child, err := applyTag(st, n.Element.Open, n.Element.Close)
			if err != nil {
				return err
			}
			if err := b.walk(n.Element.Children, child); err != nil {
				return err
			}
		default:
			b.text(n.Text, st)
		}
	}
	return nil
}

func (b *builder) text(raw string, st spanState) {
	parts := strings.Split(unescape(raw), "\n")
	for i, p := range parts {
		if i > 0 {
			b.lines = append(b.lines, Line{})
		}
		if p == "" {
			continue
		}
		last := len(b.lines) - 1
		b.lines[last] = append(b.lines[last], Span{
			Text:   p,
			Bold:   st.bold,
			Italic: st.italic,
			Script: st.script,
			Color:  st.color,
		})
	}
}

var entityReplacer = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

func unescape(s string) string {
	return strings.ReplaceAll(entityReplacer.Replace(s), "\r", "")
}

// applyTag folds one element's tag into the inherited span state and checks
// that the close tag matches the open tag.
func applyTag(st spanState, open, close string) (spanState, error) {
	name, attrs := splitTag(open)
	closeName := strings.ToLower(strings.TrimSpace(strings.Trim(close, "</> ")))
	if closeName != name {
		return st, fmt.Errorf("markup: <%s> closed by </%s>", name, closeName)
	}
	switch name {
	case "b", "strong":
		st.bold = true
	case "i", "em":
		st.italic = true
	case "sub":
		st.script = ScriptSub
	case "sup":
		st.script = ScriptSuper
	case "span":
		color, err := styleColor(attrs)
		if err != nil {
			return st, err
		}
		if color != "" {
			st.color = color
		}
	default:
		return st, fmt.Errorf("markup: unsupported tag <%s>", name)
	}
	return st, nil
}

// splitTag splits "<span style='…'>" into its lowercase name and attribute
// remainder.
func splitTag(open string) (name, attrs string) {
	inner := strings.TrimSpace(strings.Trim(open, "<> "))
	if i := strings.IndexAny(inner, " \t"); i >= 0 {
		return strings.ToLower(inner[:i]), strings.TrimSpace(inner[i+1:])
	}
	return strings.ToLower(inner), ""
}

// styleColor extracts color:… from a style attribute. Only the color
// property is recognized; other properties are ignored.
func styleColor(attrs string) (string, error) {
	if attrs == "" {
		return "", nil
	}
	i := strings.Index(strings.ToLower(attrs), "style")
	if i < 0 {
		return "", nil
	}
	rest := attrs[i+len("style"):]
	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "="))
	rest = strings.Trim(rest, `'"`)
	for _, decl := range strings.Split(rest, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(strings.ToLower(k)) == "color" {
			v = strings.TrimSpace(v)
			if !strings.HasPrefix(v, "#") {
				return "", fmt.Errorf("markup: unsupported color %q (hex only)", v)
			}
			return v, nil
		}
	}
	return "", nil
}
