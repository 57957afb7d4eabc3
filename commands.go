package main

import (
	"context"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mcncl/jsonkit/internal/batch"
	"github.com/mcncl/jsonkit/internal/config"
	"github.com/mcncl/jsonkit/internal/errors" // Custom errors package
	"github.com/mcncl/jsonkit/internal/models"
	"github.com/mcncl/jsonkit/internal/parser"
	"github.com/mcncl/jsonkit/internal/report"
	"github.com/mcncl/jsonkit/internal/store"
	"github.com/mcncl/jsonkit/internal/treeview"
)

// errReported signals that the command already told the user what failed.
var errReported = stderrors.New("failure already reported")

// InputFlags selects where JSON is read from.
type InputFlags struct {
	Files []string `arg:"" optional:"" type:"path" help:"JSON files to read. Reads stdin when omitted."`
	Last  bool     `help:"Use the input saved by the previous run." short:"l"`
}

// FormatCmd pretty-prints JSON.
type FormatCmd struct {
	Input  InputFlags `embed:""`
	Indent string     `help:"Spaces per nesting level. Invalid values fall back to the configured width." short:"i"`
}

func (c *FormatCmd) Run(app *App) error {
	sources, err := app.collect(c.Input)
	if err != nil {
		return err
	}
	indent := app.indentFor(c.Indent != "", sources)
	app.remember(sources, indent)

	return app.process(sources, func(text string) (string, error) {
		return app.formatter.Format(text, indent)
	}, func(out string) {
		app.notifier.Success("JSON formatted successfully!")
		app.notifier.Info("%s", report.Characters(utf8.RuneCountInString(out)))
	})
}

// MinifyCmd strips insignificant whitespace.
type MinifyCmd struct {
	Input InputFlags `embed:""`
}

func (c *MinifyCmd) Run(app *App) error {
	sources, err := app.collect(c.Input)
	if err != nil {
		return err
	}
	app.remember(sources, app.indentFor(false, sources))

	return app.process(sources, app.formatter.Minify, func(out string) {
		app.notifier.Success("JSON minified successfully!")
		app.notifier.Info("%s", report.Characters(utf8.RuneCountInString(out)))
	})
}

// ValidateCmd checks inputs for well-formedness.
type ValidateCmd struct {
	Input   InputFlags `embed:""`
	Details bool       `help:"Also print the tree view and analysis of valid input."`
	Output  string     `help:"Report format." enum:"text,json" default:"text" short:"o"`
}

// invalidError carries the rendered report of an input that failed
// validation.
type invalidError struct {
	report string
	result models.ValidationResult
}

func (e *invalidError) Error() string {
	return e.result.Message
}

func (c *ValidateCmd) Run(app *App) error {
	sources, err := app.collect(c.Input)
	if err != nil {
		return err
	}
	app.remember(sources, app.indentFor(false, sources))

	return app.process(sources, func(text string) (string, error) {
		result := app.formatter.Validate(text)
		out, err := report.Validation(result, c.Output)
		if err != nil {
			return "", err
		}
		if !result.Valid {
			return "", &invalidError{report: out, result: result}
		}
		if c.Details && c.Output == report.FormatText {
			tree, err := app.formatter.RenderTree(text)
			if err != nil {
				return "", err
			}
			analysis, err := app.formatter.Analyze(text)
			if err != nil {
				return "", err
			}
			out = strings.Join([]string{out, "", tree, "", report.AnalysisText(analysis)}, "\n")
		}
		return out, nil
	}, func(string) {
		app.notifier.Success("JSON is valid!")
	})
}

// AnalyzeCmd prints structural statistics.
type AnalyzeCmd struct {
	Input  InputFlags `embed:""`
	Output string     `help:"Report format." enum:"text,json" default:"text" short:"o"`
}

func (c *AnalyzeCmd) Run(app *App) error {
	sources, err := app.collect(c.Input)
	if err != nil {
		return err
	}
	app.remember(sources, app.indentFor(false, sources))

	return app.process(sources, func(text string) (string, error) {
		result, err := app.formatter.Analyze(text)
		if err != nil {
			return "", err
		}
		return report.Analysis(result, c.Output)
	}, nil)
}

// TreeCmd prints the tree view.
type TreeCmd struct {
	Input InputFlags `embed:""`
	Types bool       `help:"Annotate every scalar with its type." short:"t"`
	Color string     `help:"When to colour the output." enum:"auto,always,never,config" default:"config"`
}

// colorFromConfig is the --color value that defers to tree.color.
const colorFromConfig = "config"

func (c *TreeCmd) Run(app *App) error {
	sources, err := app.collect(c.Input)
	if err != nil {
		return err
	}
	indent := app.indentFor(false, sources)
	app.remember(sources, indent)

	// --types and --color are already merged into the config
	mode := app.cfg.Tree.Color
	opts := treeview.Options{
		IndentWidth: indent,
		ShowTypes:   app.cfg.Tree.ShowTypes,
		MaxDepth:    app.cfg.Limits.MaxDepth,
	}
	switch mode {
	case config.ColorAlways:
		opts.Palette = treeview.DefaultPalette(true)
	case config.ColorAuto:
		if app.colorOut {
			opts.Palette = treeview.DefaultPalette(false)
		}
	}
	f := app.formatter.WithTree(opts)

	return app.process(sources, f.RenderTree, nil)
}

// ClearCmd forgets the saved session.
type ClearCmd struct{}

func (c *ClearCmd) Run(app *App) error {
	if err := store.ClearSession(app.store); err != nil {
		return err
	}
	app.notifier.Success("Saved input cleared")
	return nil
}

// source is one input document, or the reason it could not be read.
type source struct {
	name      string
	text      string
	err       error
	fromStdin bool
	session   *store.Session
}

// collect gathers the inputs selected by in.
func (a *App) collect(in InputFlags) ([]source, error) {
	switch {
	case in.Last:
		sess, err := store.LoadSession(a.store)
		if err != nil {
			return nil, err
		}
		return []source{{name: "last input", text: sess.Input, session: &sess}}, nil
	case len(in.Files) > 0:
		sources := make([]source, len(in.Files))
		for i, path := range in.Files {
			data, err := parser.ReadFile(path, a.cfg.Limits.MaxInputBytes)
			if stderrors.Is(err, errors.ErrFileEmpty) {
				// an empty file is empty input, reported by the parser
				data, err = nil, nil
			}
			sources[i] = source{name: path, text: string(data), err: err}
		}
		return sources, nil
	default:
		text, err := a.readStdin()
		if err != nil {
			return nil, err
		}
		return []source{{name: "stdin", text: text, fromStdin: true}}, nil
	}
}

func (a *App) readStdin() (string, error) {
	if a.stdin == nil {
		return "", errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	if a.stdinTTY {
		_, _ = fmt.Fprintln(a.stderr, "jsonkit interactive mode")
		_, _ = fmt.Fprintln(a.stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")
	}
	r := a.stdin
	if limit := a.cfg.Limits.MaxInputBytes; limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	a.logger.Debug("read stdin", "size", len(data))
	return string(data), nil
}

// indentFor resolves the indent width: an explicit --indent (already
// merged into the config, or dropped when invalid), then the saved session,
// then the configured default.
func (a *App) indentFor(explicit bool, sources []source) int {
	if explicit {
		return a.formatter.DefaultIndent()
	}
	if len(sources) == 1 && sources[0].session != nil {
		if width := sources[0].session.Indent(); width > 0 {
			return width
		}
	}
	return a.formatter.DefaultIndent()
}

// remember saves stdin input so that --last can replay it.
func (a *App) remember(sources []source, indent int) {
	if len(sources) != 1 || !sources[0].fromStdin || strings.TrimSpace(sources[0].text) == "" {
		return
	}
	if err := store.SaveSession(a.store, sources[0].text, indent); err != nil {
		a.logger.Warn("failed to save session", "error", err)
		return
	}
	a.logger.Debug("saved session", "size", len(sources[0].text), "indent", indent)
}

// process runs op over sources through the batch runner and prints the
// results. A single input is printed bare; several inputs are printed
// under "==> name <==" headers in argument order.
func (a *App) process(sources []source, op func(string) (string, error), onSuccess func(out string)) error {
	var items []batch.Item
	for _, s := range sources {
		if s.err == nil {
			items = append(items, batch.Item{Name: s.name, Text: s.text})
		}
	}

	runner := batch.NewRunner(a.cfg.Batch.Concurrency, a.cfg.Limits.Timeout, a.logger)
	results, err := runner.Run(context.Background(), items, batch.Bounded(op))
	if err != nil {
		return err
	}

	failed, next := 0, 0
	multi := len(sources) > 1
	for i, s := range sources {
		res := batch.Result{Name: s.name, Err: s.err}
		if s.err == nil {
			// results follow the order of items
			res = results[next]
			next++
		}

		if multi {
			if i > 0 {
				_, _ = fmt.Fprintln(a.stdout)
			}
			_, _ = fmt.Fprintf(a.stdout, "==> %s <==\n", s.name)
		}
		if res.Err != nil {
			failed++
			a.reportFailure(res)
			continue
		}
		if _, err := fmt.Fprintln(a.stdout, res.Output); err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
		if onSuccess != nil && !multi {
			onSuccess(res.Output)
		}
	}

	if failed == 0 {
		return nil
	}
	if multi {
		a.notifier.Warning("%d of %d inputs failed", failed, len(sources))
	}
	return errReported
}

func (a *App) reportFailure(res batch.Result) {
	var invalid *invalidError
	if stderrors.As(res.Err, &invalid) {
		_, _ = fmt.Fprintln(a.stdout, invalid.report)
		a.notifier.Error("Invalid JSON: %s", invalid.result.Message)
		return
	}
	if errors.IsParseError(res.Err) || errors.IsLimitError(res.Err) {
		a.notifier.Error("%s", errors.UserFriendlyError(res.Err))
		return
	}
	a.notifier.Error("%s: %s", res.Name, errors.UserFriendlyError(res.Err))
}
