// Package retry wraps a single outbound AI request with a per-attempt timeout
// and exponential backoff between attempts.
//
// POLICY OBJECT:
// Every AI operation picks one Policy (attempts, backoff, timeout tier) and
// hands it to Do together with the call:
//
//	tags, err := retry.Do(ctx, logger, "analyzeTags", retry.Fast(), func(ctx context.Context) ([]string, error) {
//	    return callModel(ctx, prompt)
//	})
//
// Do = Timeout inside Retry, so each attempt gets its own time budget. The
// wrappers never swallow errors; the caller decides whether to fall back.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/sakif/portfolio-forge/internal/apperror"
)

const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = time.Second
	DefaultMultiplier   = 2.0

	// Timeout tiers, by how expensive the operation is for the model.
	FastTimeout     = 10 * time.Second
	StandardTimeout = 30 * time.Second
	ExtendedTimeout = 60 * time.Second
)

// Policy controls how one operation is retried and time-boxed.
// A zero Timeout disables the per-attempt timer.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	Timeout      time.Duration
}

func withTimeout(d time.Duration) Policy {
	return Policy{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
		Timeout:      d,
	}
}

// Fast is for extraction and classification calls.
func Fast() Policy { return withTimeout(FastTimeout) }

// Standard is for free-text drafting.
func Standard() Policy { return withTimeout(StandardTimeout) }

// Extended is for full profile generation and source parsing.
func Extended() Policy { return withTimeout(ExtendedTimeout) }

// Delay returns the wait after the given 1-based failed attempt:
// InitialDelay * Multiplier^(attempt-1).
func (p Policy) Delay(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1)))
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Multiplier <= 0 {
		p.Multiplier = DefaultMultiplier
	}
	if p.InitialDelay < 0 {
		p.InitialDelay = 0
	}
	return p
}

// sleep waits for d or until ctx is done. Tests swap it out to record the
// backoff schedule without actually waiting.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn under p: each attempt is bounded by p.Timeout, failed attempts
// are retried with backoff, and exhaustion yields one aggregated error.
func Do[T any](ctx context.Context, logger *slog.Logger, op string, p Policy, fn func(context.Context) (T, error)) (T, error) {
	return Retry(ctx, logger, op, p, func(ctx context.Context) (T, error) {
		return Timeout(ctx, op, p.Timeout, fn)
	})
}

// Retry calls fn up to p.MaxAttempts times.
//
// Errors that retrying cannot fix (validation, configuration, incomplete
// content) are returned as-is on the first occurrence. Context cancellation
// stops the loop immediately. After the final failure the result is an
// apperror.Exhausted wrapping the last error.
func Retry[T any](ctx context.Context, logger *slog.Logger, op string, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if logger == nil {
		logger = slog.Default()
	}
	p = p.normalized()

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if permanent(err) {
			return zero, err
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if attempt == p.MaxAttempts {
			break
		}

		wait := p.Delay(attempt)
		logger.Warn("attempt failed, retrying",
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.MaxAttempts),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	logger.Error("operation failed",
		slog.String("operation", op),
		slog.Int("attempts", p.MaxAttempts),
		slog.String("error", lastErr.Error()),
	)
	return zero, apperror.Exhausted(op, p.MaxAttempts, lastErr)
}

// Timeout races fn against a timer of length d.
//
// On expiry the call is abandoned: its goroutine keeps running until fn
// returns and the result is dropped into a buffered channel nobody reads.
// The derived deadline is also set on the ctx handed to fn, so calls that
// honour their context stop early.
func Timeout[T any](ctx context.Context, op string, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}

	var zero T
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(callCtx)
		done <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case out := <-done:
		// fn may notice the derived deadline a hair before our own timer.
		if out.err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return zero, apperror.Timeout(op, d)
		}
		return out.value, out.err
	case <-timer.C:
		return zero, apperror.Timeout(op, d)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func permanent(err error) bool {
	return errors.Is(err, apperror.ErrIncomplete) ||
		errors.Is(err, apperror.ErrValidation) ||
		errors.Is(err, apperror.ErrConfiguration)
}
