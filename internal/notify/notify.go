// Package notify prints short status lines to the user.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Level classifies a status line.
type Level int

const (
	Success Level = iota
	Warning
	Error
	Info
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notifier writes status lines to a writer, usually stderr.
type Notifier struct {
	mu     sync.Mutex
	w      io.Writer
	quiet  bool
	colors map[Level]*color.Color
}

// New returns a Notifier writing to w. When useColor is false the lines are
// plain text. A quiet Notifier only reports errors.
func New(w io.Writer, useColor, quiet bool) *Notifier {
	colors := map[Level]*color.Color{
		Success: color.New(color.FgGreen),
		Warning: color.New(color.FgYellow),
		Error:   color.New(color.FgRed, color.Bold),
		Info:    color.New(color.FgHiBlack),
	}
	for _, c := range colors {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &Notifier{w: w, quiet: quiet, colors: colors}
}

var symbols = map[Level]string{
	Success: "✓",
	Warning: "!",
	Error:   "✗",
	Info:    "·",
}

// Notify writes one status line.
func (n *Notifier) Notify(level Level, format string, args ...any) {
	if n == nil || (n.quiet && level != Error) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintln(n.w, n.colors[level].Sprint(symbols[level]+" "+msg))
}

func (n *Notifier) Success(format string, args ...any) { n.Notify(Success, format, args...) }
func (n *Notifier) Warning(format string, args ...any) { n.Notify(Warning, format, args...) }
func (n *Notifier) Error(format string, args ...any)   { n.Notify(Error, format, args...) }
func (n *Notifier) Info(format string, args ...any)    { n.Notify(Info, format, args...) }
