package main

import (
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/mcncl/jsonkit/internal/config"
	"github.com/mcncl/jsonkit/internal/errors" // Custom errors package
	"github.com/mcncl/jsonkit/internal/formatter"
	"github.com/mcncl/jsonkit/internal/notify"
	"github.com/mcncl/jsonkit/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config  string           `help:"Path to a config file. Defaults to the nearest .jsonkit.yml." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Quiet   bool             `help:"Only print results and errors." short:"q"`
	NoState bool             `help:"Do not read or write the saved session." name:"no-state"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Format   FormatCmd   `cmd:"" default:"withargs" help:"Pretty-print JSON (default command)."`
	Minify   MinifyCmd   `cmd:"" help:"Remove all insignificant whitespace."`
	Validate ValidateCmd `cmd:"" help:"Check that the input is a single well-formed JSON value."`
	Analyze  AnalyzeCmd  `cmd:"" help:"Summarize the structure of a JSON document."`
	Tree     TreeCmd     `cmd:"" help:"Show an indented, optionally coloured tree view."`
	Clear    ClearCmd    `cmd:"" help:"Forget the saved session."`
}

// exitCode is raised by kong's exit hook and recovered in run.
type exitCode int

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the process
// exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("jsonkit"),
		kong.Description("Validate, format, minify and analyze JSON"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Vars{"version": fmt.Sprintf("jsonkit version %s", Version)},
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}

	ctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	app, err := newApp(&cli, stdin, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		_, _ = fmt.Fprintf(stderr, "\nFor help, run: jsonkit --help\n")
		return 1
	}

	if err := ctx.Run(app); err != nil {
		if !stderrors.Is(err, errReported) {
			app.notifier.Error("%s", errors.UserFriendlyError(err))
		}
		return 1
	}
	return 0
}

// App holds everything a command needs at run time.
type App struct {
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	stdinTTY bool
	colorOut bool

	cfg       *config.Config
	logger    *slog.Logger
	formatter *formatter.Formatter
	notifier  *notify.Notifier
	store     store.Store
}

func newApp(cli *CLI, stdin io.Reader, stdout, stderr io.Writer) (*App, error) {
	configPath := cli.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	overrides, indentErr := cli.overrides()
	cfg, err := config.LoadConfigWithCLI(configPath, os.LookupEnv, overrides)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if cfg.Dev.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}
	if indentErr != nil {
		logger.Debug("indent fallback", "using", cfg.Format.IndentWidth, "error", indentErr)
	}

	app := &App{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		stdinTTY:  isTerminal(stdin),
		colorOut:  isTerminal(stdout),
		cfg:       cfg,
		logger:    logger,
		formatter: formatter.NewFormatterWithConfig(cfg, logger),
		notifier:  notify.New(stderr, isTerminal(stderr), cli.Quiet),
	}
	app.store = app.openStore()
	return app, nil
}

// overrides collects the settings given on the command line. Only the
// selected command's flags are set by kong, so the others stay zero. An
// invalid --indent is returned as an error and leaves the configured width
// in place.
func (cli *CLI) overrides() (config.Overrides, error) {
	o := config.Overrides{NoState: cli.NoState}
	if cli.Debug {
		debug := true
		o.Debug = &debug
	}

	var indentErr error
	if cli.Format.Indent != "" {
		width, err := config.ParseIndent(cli.Format.Indent)
		if err != nil {
			indentErr = err
		} else {
			o.IndentWidth = &width
		}
	}
	if cli.Tree.Types {
		types := true
		o.ShowTypes = &types
	}
	if mode := cli.Tree.Color; mode != "" && mode != colorFromConfig {
		o.Color = &mode
	}
	return o, indentErr
}

// openStore returns the session store. State is best effort: a store that
// cannot be opened is replaced by an in-memory one.
func (a *App) openStore() store.Store {
	if !a.cfg.State.Enabled {
		return store.NewMemoryStore()
	}
	path, err := a.cfg.StatePath()
	if err != nil {
		a.logger.Warn("session state disabled", "error", err)
		return store.NewMemoryStore()
	}
	fs, err := store.OpenFileStore(path)
	if err != nil {
		a.logger.Warn("session state disabled", "path", path, "error", err)
		return store.NewMemoryStore()
	}
	a.logger.Debug("opened session state", "path", path)
	return fs
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
