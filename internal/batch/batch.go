// Package batch applies one operation to many inputs concurrently.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcncl/jsonkit/internal/errors"
)

// Item is one named input.
type Item struct {
	Name string
	Text string
}

// Result is the outcome for one Item. Exactly one of Output and Err is set.
type Result struct {
	Name   string
	Output string
	Err    error
}

// Func processes a single input.
type Func func(ctx context.Context, text string) (string, error)

// Runner runs a Func over a list of items.
type Runner struct {
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

// NewRunner returns a Runner running at most concurrency items at once, each
// within timeout. A non-positive timeout disables the time budget.
func NewRunner(concurrency int, timeout time.Duration, logger *slog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{concurrency: concurrency, timeout: timeout, logger: logger}
}

// Run processes items and returns one Result per item in input order.
// A failing item does not stop the others; Run itself only fails when ctx
// is cancelled before all items are processed.
func (r *Runner) Run(ctx context.Context, items []Item, fn Func) ([]Result, error) {
	results := make([]Result, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, item := range items {
		i, item := i, item // per-iteration copy; go directive lowered below 1.22
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Name: item.Name, Err: err}
				return err
			}
			results[i] = r.runOne(gctx, item, fn)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, item Item, fn Func) Result {
	start := time.Now()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := fn(ctx, item.Text)
	if err == nil && ctx.Err() != nil {
		// finished too late; drop the output
		err = ctx.Err()
	}
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		err = errors.NewLimitError(fmt.Sprintf("processing took longer than %s", r.timeout), errors.ErrTimeout)
	}
	r.logger.Debug("batch item done", "name", item.Name, "elapsed", time.Since(start), "ok", err == nil)
	if err != nil {
		return Result{Name: item.Name, Err: err}
	}
	return Result{Name: item.Name, Output: out}
}

// Bounded adapts a context-unaware operation to Func. The returned Func
// stops waiting when ctx is done; the operation itself keeps running in the
// background until it returns.
func Bounded(op func(text string) (string, error)) Func {
	type outcome struct {
		out string
		err error
	}
	return func(ctx context.Context, text string) (string, error) {
		done := make(chan outcome, 1)
		go func() {
			out, err := op(text)
			done <- outcome{out, err}
		}()
		select {
		case o := <-done:
			return o.out, o.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}
