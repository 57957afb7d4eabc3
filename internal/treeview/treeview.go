// Package treeview renders JSON values as an indented, type-annotated tree
// for display. The output is meant for people and is not guaranteed to be
// valid JSON.
package treeview

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
	"github.com/mcncl/jsonkit/internal/render"
)

// DefaultMaxDepth bounds recursion while rendering.
const DefaultMaxDepth = 1000

// Palette holds one colour per token class. A nil entry leaves that class
// uncoloured.
type Palette struct {
	Key         *color.Color
	String      *color.Color
	Number      *color.Color
	Boolean     *color.Color
	Null        *color.Color
	Punctuation *color.Color
	Annotation  *color.Color
}

// DefaultPalette returns the standard colours. When force is true the
// colours are emitted even if stdout is not a terminal.
func DefaultPalette(force bool) *Palette {
	p := &Palette{
		Key:         color.New(color.FgBlue, color.Bold),
		String:      color.New(color.FgGreen),
		Number:      color.New(color.FgCyan),
		Boolean:     color.New(color.FgYellow),
		Null:        color.New(color.FgHiBlack),
		Punctuation: color.New(color.Faint),
		Annotation:  color.New(color.FgMagenta, color.Faint),
	}
	if force {
		for _, c := range []*color.Color{p.Key, p.String, p.Number, p.Boolean, p.Null, p.Punctuation, p.Annotation} {
			c.EnableColor()
		}
	}
	return p
}

type class int

const (
	classKey class = iota
	classString
	classNumber
	classBoolean
	classNull
	classPunctuation
	classAnnotation
)

func (p *Palette) paint(cl class, s string) string {
	if p == nil {
		return s
	}
	var c *color.Color
	switch cl {
	case classKey:
		c = p.Key
	case classString:
		c = p.String
	case classNumber:
		c = p.Number
	case classBoolean:
		c = p.Boolean
	case classNull:
		c = p.Null
	case classPunctuation:
		c = p.Punctuation
	case classAnnotation:
		c = p.Annotation
	}
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

// Options controls the tree layout.
type Options struct {
	IndentWidth int
	// ShowTypes appends the type tag of each scalar, e.g. `1 (number)`.
	ShowTypes bool
	Palette   *Palette
	MaxDepth  int
}

// DefaultOptions returns plain two-space output without annotations.
func DefaultOptions() Options {
	return Options{IndentWidth: 2, MaxDepth: DefaultMaxDepth}
}

// Renderer produces tree views.
type Renderer struct {
	opts Options
}

// NewRenderer creates a Renderer with the default options.
func NewRenderer() *Renderer {
	return &Renderer{opts: DefaultOptions()}
}

// NewRendererWithOptions creates a Renderer with custom options.
func NewRendererWithOptions(opts Options) *Renderer {
	if opts.IndentWidth < 1 {
		opts.IndentWidth = 2
	}
	return &Renderer{opts: opts}
}

// Render returns the tree view of v.
func (r *Renderer) Render(v models.Value) (string, error) {
	t := &tree{
		opts:   r.opts,
		indent: strings.Repeat(" ", r.opts.IndentWidth),
	}
	if err := t.node(v, 0); err != nil {
		return "", err
	}
	t.annotate(v)
	return t.sb.String(), nil
}

type tree struct {
	sb     strings.Builder
	opts   Options
	indent string
}

func (t *tree) node(v models.Value, level int) error {
	p := t.opts.Palette
	switch v.Kind() {
	case models.KindArray, models.KindObject:
		return t.container(v, level)
	case models.KindString:
		t.sb.WriteString(p.paint(classString, render.Quote(v.Str())))
	case models.KindNumber:
		t.sb.WriteString(p.paint(classNumber, models.CanonicalNumber(v.Literal())))
	case models.KindBoolean:
		t.sb.WriteString(p.paint(classBoolean, fmt.Sprint(v.BoolValue())))
	case models.KindNull:
		t.sb.WriteString(p.paint(classNull, "null"))
	}
	return nil
}

// annotate writes the type tag of a scalar.
func (t *tree) annotate(v models.Value) {
	if !t.opts.ShowTypes || !v.Kind().IsScalar() {
		return
	}
	p := t.opts.Palette
	t.sb.WriteString(" ")
	t.sb.WriteString(p.paint(classAnnotation, "("+v.Kind().String()+")"))
}

func (t *tree) container(v models.Value, level int) error {
	if t.opts.MaxDepth > 0 && level+1 > t.opts.MaxDepth {
		return errors.NewLimitError(
			fmt.Sprintf("nesting deeper than %d levels", t.opts.MaxDepth),
			errors.ErrDepthExceeded,
		)
	}
	p := t.opts.Palette
	open, closing := "[", "]"
	if v.Kind() == models.KindObject {
		open, closing = "{", "}"
	}
	if v.Len() == 0 {
		t.sb.WriteString(p.paint(classPunctuation, open+closing))
		return nil
	}

	t.sb.WriteString(p.paint(classPunctuation, open))
	t.sb.WriteByte('\n')
	last := v.Len() - 1
	for i := 0; i <= last; i++ {
		t.pad(level + 1)
		var child models.Value
		if v.Kind() == models.KindObject {
			m := v.MemberAt(i)
			t.sb.WriteString(p.paint(classKey, render.Quote(m.Key)))
			t.sb.WriteString(p.paint(classPunctuation, ":"))
			t.sb.WriteByte(' ')
			child = m.Value
		} else {
			child = v.At(i)
		}
		if err := t.node(child, level+1); err != nil {
			return err
		}
		t.annotate(child)
		if i != last {
			t.sb.WriteString(p.paint(classPunctuation, ","))
		}
		t.sb.WriteByte('\n')
	}
	t.pad(level)
	t.sb.WriteString(p.paint(classPunctuation, closing))
	return nil
}

func (t *tree) pad(level int) {
	for i := 0; i < level; i++ {
		t.sb.WriteString(t.indent)
	}
}
