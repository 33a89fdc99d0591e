// Package shield holds decorators shared by every shield backend.
package shield

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/example/focusguard/internal/ports/secondary"
)

// RetryPolicy bounds how hard a shield call is retried before the failure is
// reported to the blocking controller.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy tries three times over roughly a second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// RetryingShield retries StartBlocking and StopBlocking with exponential
// backoff. Both calls are idempotent, so repeating them is safe.
type RetryingShield struct {
	inner  secondary.ShieldService
	policy RetryPolicy
	logger *slog.Logger
}

// NewRetryingShield wraps inner.
func NewRetryingShield(inner secondary.ShieldService, policy RetryPolicy, logger *slog.Logger) *RetryingShield {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingShield{
		inner:  inner,
		policy: policy,
		logger: logger.With("component", "shield"),
	}
}

var (
	_ secondary.ShieldService = (*RetryingShield)(nil)
	_ secondary.ShieldProbe   = (*RetryingShield)(nil)
)

// StartBlocking turns the shield on.
func (s *RetryingShield) StartBlocking(ctx context.Context) error {
	return s.retry(ctx, "start", s.inner.StartBlocking)
}

// StopBlocking turns the shield off.
func (s *RetryingShield) StopBlocking(ctx context.Context) error {
	return s.retry(ctx, "stop", s.inner.StopBlocking)
}

// TargetsConfigured is passed through without retries.
func (s *RetryingShield) TargetsConfigured(ctx context.Context) (bool, error) {
	return s.inner.TargetsConfigured(ctx)
}

// Engaged delegates to the wrapped shield when it can be probed.
func (s *RetryingShield) Engaged(ctx context.Context) (bool, error) {
	probe, ok := s.inner.(secondary.ShieldProbe)
	if !ok {
		return false, nil
	}
	return probe.Engaged(ctx)
}

func (s *RetryingShield) retry(ctx context.Context, op string, call func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.policy.InitialInterval
	if s.policy.MaxInterval > 0 {
		b.MaxInterval = s.policy.MaxInterval
	}
	b.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		return call(ctx)
	}
	notify := func(err error, wait time.Duration) {
		s.logger.WarnContext(ctx, "shield call failed, retrying",
			"op", op, "attempt", attempt, "wait", wait, "error", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.policy.MaxAttempts-1)), ctx)
	return backoff.RetryNotify(operation, policy, notify)
}
