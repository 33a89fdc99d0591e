package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/ports/primary"
)

// BlockingAdapter translates CLI operations to BlockingService calls.
// The clock supplies "now" in the configured location.
type BlockingAdapter struct {
	service primary.BlockingService
	now     func() time.Time
	out     io.Writer
}

// NewBlockingAdapter creates a new BlockingAdapter.
func NewBlockingAdapter(service primary.BlockingService, now func() time.Time, out io.Writer) *BlockingAdapter {
	if now == nil {
		now = time.Now
	}
	return &BlockingAdapter{
		service: service,
		now:     now,
		out:     out,
	}
}

// Schedule rebuilds today's triggers and reconciles.
func (a *BlockingAdapter) Schedule(ctx context.Context) error {
	report, err := a.service.Refresh(ctx, a.now())
	if err != nil {
		return fmt.Errorf("failed to schedule: %w", err)
	}

	s := report.Schedule
	switch {
	case s.Disabled:
		fmt.Fprintln(a.out, "Auto blocking is off; nothing scheduled")
		return nil
	case s.ShieldUnavailable:
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("⚠ No shield targets configured; nothing scheduled"))
		return nil
	}

	fmt.Fprintf(a.out, "✓ Scheduled %d trigger(s), cancelled %d\n", len(s.Scheduled), len(s.Cancelled))
	for _, act := range s.Activations {
		fmt.Fprintf(a.out, "  %s until %s: %s\n", act.TaskID, act.Until.Format("15:04"), outcomeLabel(act.Outcome))
	}
	for _, sk := range s.Skipped {
		fmt.Fprintf(a.out, "  skipped %s: %s\n", sk.TaskID, sk.Reason)
	}
	for _, f := range s.Failures {
		fmt.Fprintf(a.out, "  %s %s: %s\n", color.New(color.FgRed).Sprint("✗"), f.TaskID, f.Error)
	}
	a.printReconcile(report.Reconcile)
	return nil
}

// Reconcile converges the session on today's tasks.
func (a *BlockingAdapter) Reconcile(ctx context.Context) error {
	report, err := a.service.ReconcileFromSource(ctx, a.now())
	if err != nil {
		return fmt.Errorf("failed to reconcile: %w", err)
	}
	a.printReconcile(report)
	return nil
}

func (a *BlockingAdapter) printReconcile(r *primary.ReconcileReport) {
	if r == nil {
		return
	}
	if r.Transition == "" || r.Transition == string(blocking.TransitionNone) {
		fmt.Fprintln(a.out, "✓ Blocking state up to date")
	} else {
		fmt.Fprintf(a.out, "✓ Reconciled: %s (%s)\n", r.Transition, outcomeLabel(r.Outcome))
	}
	if r.StrayShieldStop {
		fmt.Fprintln(a.out, "  stopped a shield left on by an earlier run")
	}
}

// Fire delivers a wake trigger by hand, as the OS would.
func (a *BlockingAdapter) Fire(ctx context.Context, triggerID string, payload []byte) error {
	report, err := a.service.HandleWake(ctx, triggerID, payload, a.now())
	if err != nil {
		return fmt.Errorf("failed to handle trigger %s: %w", triggerID, err)
	}
	a.PrintDelivery(report)
	return nil
}

// PrintDelivery writes one line per delivered trigger.
func (a *BlockingAdapter) PrintDelivery(r *primary.DeliveryReport) {
	line := fmt.Sprintf("%s %s: %s", r.Kind, r.TaskID, outcomeLabel(r.Outcome))
	if r.Reason != "" {
		line += " (" + r.Reason + ")"
	}
	fmt.Fprintf(a.out, "→ %s\n", line)
}

// SetAuto turns auto blocking on or off. Turning it on schedules today.
func (a *BlockingAdapter) SetAuto(ctx context.Context, enabled bool) error {
	if err := a.service.SetAutoBlocking(ctx, enabled, a.now()); err != nil {
		return fmt.Errorf("failed to set auto blocking: %w", err)
	}
	if !enabled {
		fmt.Fprintln(a.out, "✓ Auto blocking off")
		return nil
	}
	fmt.Fprintln(a.out, "✓ Auto blocking on")
	return a.Schedule(ctx)
}

// Status prints the session, the toggle, pending triggers and recent events.
func (a *BlockingAdapter) Status(ctx context.Context, events int) error {
	enabled, err := a.service.AutoBlockingEnabled(ctx)
	if err != nil {
		return err
	}
	state := a.service.State(ctx)

	auto := color.New(color.FgYellow).Sprint("off")
	if enabled {
		auto = color.New(color.FgGreen).Sprint("on")
	}
	fmt.Fprintf(a.out, "\nAuto blocking: %s\n", auto)

	if state.Active() {
		fmt.Fprintf(a.out, "Session:       %s %s %s until %s\n",
			color.New(color.FgHiMagenta).Sprint("●"), state.TaskID, state.Title, state.EndTime.Format("15:04"))
	} else {
		fmt.Fprintln(a.out, "Session:       idle")
	}
	if state.Phase != primary.PhaseIdle && state.Phase != primary.PhaseBlocking {
		fmt.Fprintf(a.out, "Phase:         %s\n", state.Phase)
	}
	if state.LastError != "" {
		fmt.Fprintf(a.out, "Last error:    %s\n", color.New(color.FgRed).Sprint(state.LastError))
	}

	pending, err := a.service.PendingTriggers(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Triggers:      %d pending\n", len(pending))
	for _, id := range pending {
		fmt.Fprintf(a.out, "  %s\n", id)
	}

	if events > 0 {
		recent, err := a.service.RecentEvents(ctx, events)
		if err != nil {
			return err
		}
		if len(recent) > 0 {
			fmt.Fprintln(a.out, "\nRecent events:")
			for _, e := range recent {
				fmt.Fprintf(a.out, "  %s %-14s %-10s %s\n",
					e.OccurredAt.In(a.now().Location()).Format("2006-01-02 15:04"), e.Kind, e.TaskID, e.Detail)
			}
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

func outcomeLabel(o primary.Outcome) string {
	switch o {
	case primary.OutcomeActivated, primary.OutcomeDeactivated, primary.OutcomeHandedOver:
		return color.New(color.FgGreen).Sprint(string(o))
	case primary.OutcomeFailed, primary.OutcomeShieldUnavailable:
		return color.New(color.FgRed).Sprint(string(o))
	case primary.OutcomeStale, primary.OutcomeBusy, primary.OutcomeMalformed:
		return color.New(color.FgYellow).Sprint(string(o))
	default:
		return string(o)
	}
}
