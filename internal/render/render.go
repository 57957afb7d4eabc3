// Package render serializes parsed JSON values back to canonical text,
// either pretty-printed or minified.
package render

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
)

const (
	// DefaultIndentWidth is the number of spaces per nesting level.
	DefaultIndentWidth = 2
	// DefaultMaxDepth bounds recursion while rendering.
	DefaultMaxDepth = 1000
)

// Renderer is responsible for serializing values deterministically.
type Renderer struct {
	maxDepth int
}

// NewRenderer creates a new Renderer instance
func NewRenderer() *Renderer {
	return &Renderer{maxDepth: DefaultMaxDepth}
}

// NewRendererWithMaxDepth creates a Renderer with a custom nesting bound.
// A bound of zero disables the check.
func NewRendererWithMaxDepth(maxDepth int) *Renderer {
	return &Renderer{maxDepth: maxDepth}
}

// Render serializes v according to mode.
func (r *Renderer) Render(v models.Value, mode models.RenderMode) (models.RenderOutput, error) {
	var (
		text string
		err  error
	)
	switch mode.Style {
	case models.StyleMinified:
		text, err = r.Minify(v)
	default:
		text, err = r.Pretty(v, mode.IndentWidth)
	}
	if err != nil {
		return models.RenderOutput{}, err
	}
	return models.RenderOutput{Text: text, Mode: mode}, nil
}

// Pretty renders v with one child per line, indented by indentWidth spaces
// per level. Widths below 1 use DefaultIndentWidth.
func (r *Renderer) Pretty(v models.Value, indentWidth int) (string, error) {
	if indentWidth < 1 {
		indentWidth = DefaultIndentWidth
	}
	w := &writer{indent: strings.Repeat(" ", indentWidth), maxDepth: r.maxDepth}
	if err := w.value(v, 0); err != nil {
		return "", err
	}
	return w.sb.String(), nil
}

// Minify renders v without any insignificant whitespace.
func (r *Renderer) Minify(v models.Value) (string, error) {
	w := &writer{maxDepth: r.maxDepth}
	if err := w.value(v, 0); err != nil {
		return "", err
	}
	return w.sb.String(), nil
}

// writer accumulates output. An empty indent selects minified output.
type writer struct {
	sb       strings.Builder
	indent   string
	maxDepth int
}

func (w *writer) value(v models.Value, level int) error {
	switch v.Kind() {
	case models.KindNull:
		w.sb.WriteString("null")
	case models.KindBoolean:
		if v.BoolValue() {
			w.sb.WriteString("true")
		} else {
			w.sb.WriteString("false")
		}
	case models.KindNumber:
		w.sb.WriteString(models.CanonicalNumber(v.Literal()))
	case models.KindString:
		w.sb.WriteString(Quote(v.Str()))
	case models.KindArray, models.KindObject:
		return w.container(v, level)
	}
	return nil
}

func (w *writer) container(v models.Value, level int) error {
	if w.maxDepth > 0 && level+1 > w.maxDepth {
		return errors.NewLimitError(
			fmt.Sprintf("nesting deeper than %d levels", w.maxDepth),
			errors.ErrDepthExceeded,
		)
	}

	open, closing := byte('['), byte(']')
	if v.Kind() == models.KindObject {
		open, closing = '{', '}'
	}
	w.sb.WriteByte(open)
	if v.Len() == 0 {
		w.sb.WriteByte(closing)
		return nil
	}

	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			w.sb.WriteByte(',')
		}
		w.newline(level + 1)

		child := v
		if v.Kind() == models.KindObject {
			m := v.MemberAt(i)
			w.sb.WriteString(Quote(m.Key))
			w.sb.WriteByte(':')
			if w.indent != "" {
				w.sb.WriteByte(' ')
			}
			child = m.Value
		} else {
			child = v.At(i)
		}
		if err := w.value(child, level+1); err != nil {
			return err
		}
	}

	w.newline(level)
	w.sb.WriteByte(closing)
	return nil
}

func (w *writer) newline(level int) {
	if w.indent == "" {
		return
	}
	w.sb.WriteByte('\n')
	for i := 0; i < level; i++ {
		w.sb.WriteString(w.indent)
	}
}

const hex = "0123456789abcdef"

// Quote returns s as a JSON string literal. Quotes, backslashes and
// control characters are escaped; everything else is kept as UTF-8.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		sb.WriteString(s[start:i])
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteString(`\u00`)
			sb.WriteByte(hex[c>>4])
			sb.WriteByte(hex[c&0xf])
		}
		start = i + 1
	}
	sb.WriteString(s[start:])
	sb.WriteByte('"')
	return sb.String()
}
