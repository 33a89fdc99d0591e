// Package telemetry provides the OpenTelemetry counters of the blocking orchestrator.
// Without an SDK meter provider installed the counters are no-ops.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// InstrumentationName identifies the meter.
const InstrumentationName = "github.com/example/focusguard"

// Metrics holds the orchestrator counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	transitions        metric.Int64Counter
	triggersScheduled  metric.Int64Counter
	schedulingFailures metric.Int64Counter
	stalePayloads      metric.Int64Counter
	driftCorrected     metric.Int64Counter
}

// NewMetrics creates the counters on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.transitions, err = meter.Int64Counter("focusguard.transitions",
		metric.WithDescription("Blocking state transitions applied")); err != nil {
		return nil, err
	}
	if m.triggersScheduled, err = meter.Int64Counter("focusguard.triggers.scheduled",
		metric.WithDescription("Wake triggers scheduled")); err != nil {
		return nil, err
	}
	if m.schedulingFailures, err = meter.Int64Counter("focusguard.scheduling.failures",
		metric.WithDescription("Tasks whose wake triggers could not be scheduled")); err != nil {
		return nil, err
	}
	if m.stalePayloads, err = meter.Int64Counter("focusguard.payloads.stale",
		metric.WithDescription("Delivered wake triggers dropped as stale")); err != nil {
		return nil, err
	}
	if m.driftCorrected, err = meter.Int64Counter("focusguard.drift.corrected",
		metric.WithDescription("Reconciliation passes that changed state")); err != nil {
		return nil, err
	}

	return m, nil
}

// Default creates the counters on the global meter provider, falling back to
// a no-op meter if instrument creation fails.
func Default() *Metrics {
	m, err := NewMetrics(otel.Meter(InstrumentationName))
	if err != nil {
		m, _ = NewMetrics(noop.NewMeterProvider().Meter(InstrumentationName))
	}
	return m
}

// Transition counts an applied transition of the given kind.
func (m *Metrics) Transition(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// TriggersScheduled counts scheduled triggers.
func (m *Metrics) TriggersScheduled(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.triggersScheduled.Add(ctx, int64(n))
}

// SchedulingFailure counts a task whose triggers failed.
func (m *Metrics) SchedulingFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.schedulingFailures.Add(ctx, 1)
}

// StalePayload counts a dropped trigger delivery.
func (m *Metrics) StalePayload(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.stalePayloads.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// DriftCorrected counts a reconciliation that applied a transition.
func (m *Metrics) DriftCorrected(ctx context.Context, transition string) {
	if m == nil {
		return
	}
	m.driftCorrected.Add(ctx, 1, metric.WithAttributes(attribute.String("transition", transition)))
}
