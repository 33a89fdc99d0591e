package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/focusguard/internal/ctxutil"
	"github.com/example/focusguard/internal/ports/primary"
	"github.com/example/focusguard/internal/ports/secondary"
)

// Runner is the foreground host loop. It refreshes once on entry, then on
// every tick delivers due wake triggers and reconciles against the task source.
type Runner struct {
	service primary.BlockingService
	inbox   secondary.WakeInbox
	limiter *rate.Limiter
	now     func() time.Time
	logger  *slog.Logger
}

// NewRunner creates a Runner ticking every interval. burst allows that many
// ticks back to back, e.g. after the process was suspended.
func NewRunner(service primary.BlockingService, inbox secondary.WakeInbox, interval time.Duration, burst int, now func() time.Time, logger *slog.Logger) *Runner {
	if burst < 1 {
		burst = 1
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		service: service,
		inbox:   inbox,
		limiter: rate.NewLimiter(rate.Every(interval), burst),
		now:     now,
		logger:  logger.With("component", "runner"),
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	fg := ctxutil.WithTrigger(ctx, ctxutil.TriggerForeground)
	if _, err := r.service.Refresh(fg, r.now()); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("initial refresh failed: %w", err)
	}
	r.logger.InfoContext(ctx, "runner started")

	for {
		// Wait only fails once ctx is done or its deadline is too close.
		if err := r.limiter.Wait(ctx); err != nil {
			r.logger.InfoContext(context.Background(), "runner stopped", "reason", err)
			return nil
		}
		if err := r.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.WarnContext(ctx, "tick failed", "error", err)
		}
	}
}

// Tick delivers due triggers, then reconciles.
func (r *Runner) Tick(ctx context.Context) error {
	if _, err := r.DeliverDue(ctx); err != nil {
		return err
	}
	tctx := ctxutil.WithTrigger(ctx, ctxutil.TriggerTimer)
	if _, err := r.service.ReconcileFromSource(tctx, r.now()); err != nil {
		return fmt.Errorf("failed to reconcile: %w", err)
	}
	return nil
}

// DeliverDue hands every due trigger to the service and acknowledges those
// it handled. Triggers whose handling failed stay due and are retried.
func (r *Runner) DeliverDue(ctx context.Context) ([]*primary.DeliveryReport, error) {
	now := r.now()
	due, err := r.inbox.Due(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due triggers: %w", err)
	}

	wctx := ctxutil.WithTrigger(ctx, ctxutil.TriggerWake)
	var reports []*primary.DeliveryReport
	var handled []string
	for _, t := range due {
		report, err := r.service.HandleWake(wctx, t.ID, t.Payload, now)
		if err != nil {
			r.logger.WarnContext(ctx, "failed to handle trigger", "trigger_id", t.ID, "error", err)
			continue
		}
		reports = append(reports, report)
		handled = append(handled, t.ID)
	}

	if len(handled) > 0 {
		if err := r.inbox.Ack(ctx, handled); err != nil {
			return reports, fmt.Errorf("failed to acknowledge triggers: %w", err)
		}
	}
	return reports, nil
}
