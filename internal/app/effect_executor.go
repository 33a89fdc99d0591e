// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/focusguard/internal/core/effects"
	"github.com/example/focusguard/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place planned I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor against the wake scheduler.
type DefaultEffectExecutor struct {
	wake   secondary.WakeScheduler
	logger *slog.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor(wake secondary.WakeScheduler, logger *slog.Logger) *DefaultEffectExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultEffectExecutor{
		wake:   wake,
		logger: logger,
	}
}

// Execute processes a slice of effects, executing each in sequence.
// It stops at the first failure.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.WakeEffect:
		return e.executeWake(ctx, typed)
	case effects.CompositeEffect:
		return e.Execute(ctx, typed.Effects)
	case effects.LogEffect:
		e.executeLog(ctx, typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeWake(ctx context.Context, eff effects.WakeEffect) error {
	switch eff.Operation {
	case effects.WakeSchedule:
		if len(eff.IDs) != 1 {
			return fmt.Errorf("schedule needs exactly one trigger id, got %d", len(eff.IDs))
		}
		return e.wake.Schedule(ctx, eff.IDs[0], eff.FireAt, eff.Payload)
	case effects.WakeCancel:
		if len(eff.IDs) == 0 {
			return nil
		}
		return e.wake.Cancel(ctx, eff.IDs)
	default:
		return fmt.Errorf("unknown wake operation: %s", eff.Operation)
	}
}

func (e *DefaultEffectExecutor) executeLog(ctx context.Context, eff effects.LogEffect) {
	level := slog.LevelInfo
	switch eff.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	args := make([]any, 0, len(eff.Fields)*2)
	for k, v := range eff.Fields {
		args = append(args, k, v)
	}
	e.logger.Log(ctx, level, eff.Message, args...)
}
