// Package retry wraps the fetch/extract cycle with bounded exponential
// backoff, distinguishing upstream throttling from other failures by error
// type.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shelfgrab/shelfgrab/config"
	"github.com/shelfgrab/shelfgrab/models"
)

// State of a controller over one work item's lifetime.
type State int

const (
	Pending State = iota
	Attempting
	BackingOff
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Attempting:
		return "attempting"
	case BackingOff:
		return "backing-off"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Operation is one fetch+extract cycle. A nil error is success even when the
// cycle yielded zero records.
type Operation func(ctx context.Context) error

// Controller drives the retry state machine for a single work item:
//
//	Pending → Attempting → {Succeeded, BackingOff, Failed}
//
// Backoff delays follow min(cap, base * 2^attempt) deterministically. The
// controller is scoped to one item and must not be shared.
type Controller struct {
	cfg     config.RetryConfig
	state   State
	attempt int

	// wait blocks for the given delay or until ctx is done. Replaced in
	// tests to avoid real sleeping.
	wait func(ctx context.Context, d time.Duration) error
}

// NewController creates a controller in the Pending state.
func NewController(cfg config.RetryConfig) *Controller {
	return &Controller{cfg: cfg, state: Pending, wait: sleepWait}
}

// State returns the controller's current state.
func (c *Controller) State() State { return c.state }

// Attempt returns the number of completed attempts.
func (c *Controller) Attempt() int { return c.attempt }

// Do runs op until it succeeds, the attempt budget is exhausted, or ctx is
// cancelled. On exhaustion the last error is returned wrapped; the caller
// decides whether that is fatal (single-URL mode) or a per-item failure
// (batch mode).
func (c *Controller) Do(ctx context.Context, op Operation) error {
	bo := newSchedule(c.cfg)

	var lastErr error
	for {
		c.state = Attempting
		err := op(ctx)
		if err == nil {
			c.state = Succeeded
			return nil
		}
		lastErr = err
		c.attempt++

		if c.attempt >= c.cfg.MaxAttempts {
			c.state = Failed
			return fmt.Errorf("failed after %d attempts: %w", c.attempt, lastErr)
		}

		c.state = BackingOff
		delay := bo.NextBackOff()
		if models.IsRateLimited(err) {
			slog.Warn("rate limited, backing off",
				"attempt", c.attempt, "delay", delay, "error", err)
		} else {
			slog.Warn("attempt failed, backing off",
				"attempt", c.attempt, "delay", delay, "error", err)
		}

		if err := c.wait(ctx, delay); err != nil {
			c.state = Failed
			return fmt.Errorf("backoff interrupted: %w", err)
		}
	}
}

// newSchedule builds the deterministic exponential schedule: the k-th backoff
// is min(cap, base * 2^k) for k = 1, 2, ...
func newSchedule(cfg config.RetryConfig) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * cfg.BaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = cfg.MaxDelay
	bo.MaxElapsedTime = 0 // attempts, not elapsed time, bound the retries
	bo.Reset()
	return bo
}

// sleepWait blocks for d, honoring context cancellation.
func sleepWait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
