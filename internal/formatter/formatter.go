// Package formatter is the entry point for every JSON operation. Each call
// parses its input independently and either returns a complete result or a
// parse error; no partial output is ever produced.
package formatter

import (
	"log/slog"
	"time"

	"github.com/mcncl/jsonkit/internal/analyzer"
	"github.com/mcncl/jsonkit/internal/config"
	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
	"github.com/mcncl/jsonkit/internal/parser"
	"github.com/mcncl/jsonkit/internal/render"
	"github.com/mcncl/jsonkit/internal/treeview"
)

// Formatter ties the parser to the renderers and the analyzer.
type Formatter struct {
	parser        *parser.Parser
	analyzer      *analyzer.Analyzer
	renderer      *render.Renderer
	tree          *treeview.Renderer
	defaultIndent int
	logger        *slog.Logger
}

// NewFormatter creates a Formatter with the default configuration.
func NewFormatter() *Formatter {
	return NewFormatterWithConfig(config.NewConfig(), nil)
}

// NewFormatterWithConfig creates a Formatter honouring cfg. A nil logger
// uses slog.Default().
func NewFormatterWithConfig(cfg *config.Config, logger *slog.Logger) *Formatter {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	indent, err := config.NormalizeIndent(cfg.Format.IndentWidth)
	if err != nil {
		logger.Debug("indent fallback", "error", err)
	}
	return &Formatter{
		parser:        parser.NewParserWithLimits(cfg.ParserLimits()),
		analyzer:      analyzer.NewAnalyzerWithMaxDepth(cfg.Limits.MaxDepth),
		renderer:      render.NewRendererWithMaxDepth(cfg.Limits.MaxDepth),
		tree:          treeview.NewRendererWithOptions(treeview.Options{IndentWidth: indent, MaxDepth: cfg.Limits.MaxDepth}),
		defaultIndent: indent,
		logger:        logger,
	}
}

// WithTree returns a copy of f that renders trees with opts.
func (f *Formatter) WithTree(opts treeview.Options) *Formatter {
	clone := *f
	if opts.MaxDepth == 0 {
		opts.MaxDepth = f.parser.Limits().MaxDepth
	}
	clone.tree = treeview.NewRendererWithOptions(opts)
	return &clone
}

// DefaultIndent returns the indent width used when none is requested.
func (f *Formatter) DefaultIndent() int {
	return f.defaultIndent
}

// ParseAndValidate parses text into a value.
func (f *Formatter) ParseAndValidate(text string) (models.Value, error) {
	start := time.Now()
	v, err := f.parser.ParseString(text)
	if err != nil {
		f.logger.Debug("parse failed", "size", len(text), "error", err)
		return models.Value{}, err
	}
	f.logger.Debug("parsed input", "size", len(text), "kind", v.Kind().String(), "elapsed", time.Since(start))
	return v, nil
}

// Render parses text and serializes it according to mode.
func (f *Formatter) Render(text string, mode models.RenderMode) (models.RenderOutput, error) {
	if mode.Style == models.StylePretty {
		mode.IndentWidth = f.indent(mode.IndentWidth)
	}
	v, err := f.ParseAndValidate(text)
	if err != nil {
		return models.RenderOutput{}, err
	}
	return f.renderer.Render(v, mode)
}

// Format pretty-prints text. A non-positive indentWidth falls back to the
// configured default.
func (f *Formatter) Format(text string, indentWidth int) (string, error) {
	out, err := f.Render(text, models.PrettyMode(indentWidth))
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// Minify renders text without insignificant whitespace.
func (f *Formatter) Minify(text string) (string, error) {
	out, err := f.Render(text, models.MinifiedMode())
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// Analyze parses text and summarizes its structure.
func (f *Formatter) Analyze(text string) (models.AnalysisResult, error) {
	v, err := f.ParseAndValidate(text)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return f.analyzer.Analyze(v)
}

// RenderTree parses text and returns its tree view.
func (f *Formatter) RenderTree(text string) (string, error) {
	v, err := f.ParseAndValidate(text)
	if err != nil {
		return "", err
	}
	return f.tree.Render(v)
}

// Validate reports whether text is a single well-formed JSON value.
func (f *Formatter) Validate(text string) models.ValidationResult {
	if _, err := f.ParseAndValidate(text); err != nil {
		result := models.ValidationResult{Message: errors.Describe(err)}
		if pos, ok := errors.PositionOf(err); ok {
			result.Position = &pos
		}
		return result
	}
	return models.ValidationResult{Valid: true, Message: "Valid JSON"}
}

func (f *Formatter) indent(width int) int {
	if width > 0 {
		return width
	}
	if _, err := config.NormalizeIndent(width); err != nil {
		f.logger.Debug("indent fallback", "requested", width, "using", f.defaultIndent, "error", err)
	}
	return f.defaultIndent
}
