package common

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/turtacn/ProductMatch/pkg/errors"
)

// ---------------------------------------------------------------------------
// ItemStatus enumeration
// ---------------------------------------------------------------------------

// ItemStatus is the outcome of one batch item.
type ItemStatus int

const (
	ItemStatusSuccess ItemStatus = iota
	ItemStatusFailed
	ItemStatusPanicked
)

func (s ItemStatus) String() string {
	switch s {
	case ItemStatusSuccess:
		return "SUCCESS"
	case ItemStatusFailed:
		return "FAILED"
	case ItemStatusPanicked:
		return "PANICKED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ---------------------------------------------------------------------------
// Generic types
// ---------------------------------------------------------------------------

// ProcessFunc processes one item.
type ProcessFunc[T, R any] func(ctx context.Context, item T) (R, error)

// ItemResult is the outcome of one item.  Result holds whatever the process
// function returned, or the placeholder when it failed.
type ItemResult[R any] struct {
	Index      int        `json:"index"`
	Result     R          `json:"result"`
	Error      error      `json:"error,omitempty"`
	DurationMs float64    `json:"duration_ms"`
	Status     ItemStatus `json:"status"`
}

// BatchResult aggregates a run.  Results is index-aligned with the input.
type BatchResult[R any] struct {
	Results         []*ItemResult[R] `json:"results"`
	TotalCount      int              `json:"total_count"`
	SuccessCount    int              `json:"success_count"`
	FailureCount    int              `json:"failure_count"`
	TotalDurationMs float64          `json:"total_duration_ms"`
}

// ---------------------------------------------------------------------------
// Sequential runner
// ---------------------------------------------------------------------------

// SequentialOption configures RunSequential.
type SequentialOption[T, R any] func(*sequentialConfig[T, R])

type sequentialConfig[T, R any] struct {
	placeholder func(index int, item T, err error) R
	onItem      func(res *ItemResult[R])
	now         func() time.Time
}

// WithPlaceholder supplies the result stored for a failed item.
func WithPlaceholder[T, R any](fn func(index int, item T, err error) R) SequentialOption[T, R] {
	return func(c *sequentialConfig[T, R]) { c.placeholder = fn }
}

// WithItemHook is called after every item, in input order.
func WithItemHook[T, R any](fn func(res *ItemResult[R])) SequentialOption[T, R] {
	return func(c *sequentialConfig[T, R]) { c.onItem = fn }
}

// WithClock overrides time.Now.
func WithClock[T, R any](now func() time.Time) SequentialOption[T, R] {
	return func(c *sequentialConfig[T, R]) {
		if now != nil {
			c.now = now
		}
	}
}

// RunSequential processes items one at a time, in order, fully finishing each
// before starting the next.  An error or panic from fn fails only that item.
// The context is handed to fn and never consulted by the runner itself.
func RunSequential[T, R any](ctx context.Context, items []T, fn ProcessFunc[T, R], opts ...SequentialOption[T, R]) *BatchResult[R] {
	cfg := &sequentialConfig[T, R]{now: time.Now}
	for _, o := range opts {
		o(cfg)
	}

	start := cfg.now()
	out := &BatchResult[R]{
		Results:    make([]*ItemResult[R], 0, len(items)),
		TotalCount: len(items),
	}

	for i, item := range items {
		itemStart := cfg.now()
		res, panicked, err := invokeSafely(ctx, item, fn)

		ir := &ItemResult[R]{Index: i, Result: res, Error: err, Status: ItemStatusSuccess}
		switch {
		case panicked:
			ir.Status = ItemStatusPanicked
		case err != nil:
			ir.Status = ItemStatusFailed
		}
		if ir.Status != ItemStatusSuccess {
			out.FailureCount++
			if cfg.placeholder != nil {
				ir.Result = cfg.placeholder(i, item, err)
			}
		} else {
			out.SuccessCount++
		}
		ir.DurationMs = msSince(cfg.now, itemStart)
		out.Results = append(out.Results, ir)

		if cfg.onItem != nil {
			cfg.onItem(ir)
		}
	}

	out.TotalDurationMs = msSince(cfg.now, start)
	return out
}

// Invoke runs fn once inside the same panic boundary RunSequential uses.  A
// panic comes back as a CodeSelectorPanic error.
func Invoke[T, R any](ctx context.Context, item T, fn ProcessFunc[T, R]) (R, error) {
	res, _, err := invokeSafely(ctx, item, fn)
	return res, err
}

func invokeSafely[T, R any](ctx context.Context, item T, fn ProcessFunc[T, R]) (res R, panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 2048)
			n := runtime.Stack(buf, false)
			err = errors.Newf(errors.CodeSelectorPanic, "item panicked: %v", r).WithDetail(string(buf[:n]))
			panicked = true
		}
	}()
	res, err = fn(ctx, item)
	return res, false, err
}

func msSince(now func() time.Time, start time.Time) float64 {
	return float64(now().Sub(start).Microseconds()) / 1000
}

//Personal.AI order the ending
