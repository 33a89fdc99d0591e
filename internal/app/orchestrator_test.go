package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/ports/primary"
)

func startID(taskID string) string { return blocking.TriggerID(taskID, blocking.KindStart) }
func endID(taskID string) string   { return blocking.TriggerID(taskID, blocking.KindEnd) }

func TestScheduleForTasks_WindowInProgressActivatesImmediately(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	report, err := o.ScheduleForTasks(ctx, []*primary.Task{focusTask("T1", "09:00", "09:30")}, at("09:10"))
	require.NoError(t, err)

	state := o.State(ctx)
	assert.Equal(t, primary.PhaseBlocking, state.Phase)
	assert.Equal(t, "T1", state.TaskID)
	assert.True(t, state.EndTime.Equal(at("09:30")))

	assert.Equal(t, 1, f.shield.starts)
	assert.False(t, f.wake.has(startID("T1")), "no start trigger for a window already running")
	assert.True(t, f.wake.has(endID("T1")))
	assert.Equal(t, []string{endID("T1")}, report.Scheduled)
	require.Len(t, report.Activations, 1)
	assert.Equal(t, primary.OutcomeActivated, report.Activations[0].Outcome)
}

func TestReconcile_OverlapPicksEarliestStart(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()
	tasks := []*primary.Task{
		focusTask("T2", "09:30", "10:00"),
		focusTask("T1", "09:00", "10:00"),
	}

	report, err := o.Reconcile(ctx, tasks, at("09:40"))
	require.NoError(t, err)
	assert.Equal(t, string(blocking.TransitionActivate), report.Transition)
	assert.Equal(t, "T1", report.DesiredTaskID)
	assert.Equal(t, "T1", o.State(ctx).TaskID)
	assert.Equal(t, 1, f.shield.starts)

	again, err := o.Reconcile(ctx, tasks, at("09:40"))
	require.NoError(t, err)
	assert.Equal(t, string(blocking.TransitionNone), again.Transition)
	assert.Equal(t, primary.OutcomeNone, again.Outcome)
	assert.Equal(t, 1, f.shield.starts)
	assert.Equal(t, 0, f.shield.stops)
}

func TestCancelForTask_ActiveTaskStopsOnce(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	_, err := o.ScheduleForTasks(ctx, []*primary.Task{focusTask("T1", "09:00", "10:00")}, at("09:10"))
	require.NoError(t, err)
	require.Equal(t, "T1", o.State(ctx).TaskID)

	report, err := o.CancelForTask(ctx, "T1", at("09:20"))
	require.NoError(t, err)
	assert.True(t, report.Deactivated)
	assert.ElementsMatch(t, []string{startID("T1"), endID("T1")}, report.Cancelled)
	assert.Equal(t, 1, f.shield.stops)
	assert.Equal(t, primary.PhaseIdle, o.State(ctx).Phase)
	assert.False(t, o.State(ctx).Active())
	assert.Empty(t, f.wake.ids())

	again, err := o.CancelForTask(ctx, "T1", at("09:21"))
	require.NoError(t, err)
	assert.False(t, again.Deactivated)
	assert.Equal(t, 1, f.shield.stops)
}

func TestCancelForTask_InactiveTaskKeepsSession(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	tasks := []*primary.Task{focusTask("T1", "09:00", "10:00"), focusTask("T2", "11:00", "12:00")}
	_, err := o.ScheduleForTasks(ctx, tasks, at("09:10"))
	require.NoError(t, err)

	report, err := o.CancelForTask(ctx, "T2", at("09:20"))
	require.NoError(t, err)
	assert.False(t, report.Deactivated)
	assert.Equal(t, "T1", o.State(ctx).TaskID)
	assert.Equal(t, 0, f.shield.stops)
	assert.Equal(t, []string{endID("T1")}, f.wake.ids())
}

func TestDisabled_NoWakeOrShieldCalls(t *testing.T) {
	f := newFixture()
	f.settings.enabled = false
	f.shield.engaged = true
	o := f.orchestratorWith(probingShield{f.shield})
	ctx := context.Background()
	tasks := []*primary.Task{
		focusTask("T1", "09:00", "10:00"),
		focusTask("T2", "11:00", "12:00"),
	}

	schedule, err := o.ScheduleForTasks(ctx, tasks, at("09:10"))
	require.NoError(t, err)
	assert.True(t, schedule.Disabled)

	reconcile, err := o.Reconcile(ctx, tasks, at("09:10"))
	require.NoError(t, err)
	assert.False(t, reconcile.Enabled)
	assert.Equal(t, string(blocking.TransitionNone), reconcile.Transition)

	assert.False(t, reconcile.StrayShieldStop)

	assert.Equal(t, 0, f.wake.calls())
	assert.Equal(t, 0, f.shield.calls())
	assert.Equal(t, 0, f.shield.probes, "shield is not probed while disabled")
	assert.Equal(t, 0, f.shield.stops)
	assert.False(t, o.State(ctx).Active())
}

func TestHandleWake_StaleEndDoesNotDeactivate(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	t1 := focusTask("T1", "09:00", "10:00")
	t2 := focusTask("T2", "09:30", "11:00")
	f.source.set(t1, t2)

	_, err := o.ScheduleForTasks(ctx, []*primary.Task{t1, t2}, at("08:00"))
	require.NoError(t, err)
	f.wake.fire(t, o, startID("T1"), at("09:00"))
	assert.Equal(t, primary.OutcomeHeld, f.wake.fire(t, o, startID("T2"), at("09:30")).Outcome)

	// T1 is completed outside the engine; reconciliation hands over to T2.
	completed := *t1
	completed.Status = blocking.StatusCompleted
	f.source.set(&completed, t2)
	rec, err := o.ReconcileFromSource(ctx, at("09:40"))
	require.NoError(t, err)
	assert.Equal(t, primary.OutcomeHandedOver, rec.Outcome)
	require.Equal(t, "T2", o.State(ctx).TaskID)

	report := f.wake.fire(t, o, endID("T1"), at("10:00"))
	assert.Equal(t, primary.OutcomeStale, report.Outcome)
	assert.Contains(t, report.Reason, "does not match active task T2")
	assert.Equal(t, 0, f.shield.stops)
	assert.Equal(t, "T2", o.State(ctx).TaskID)
	assert.Contains(t, f.events.kinds(), EventStalePayload)
}

func TestFullDay_SequentialWindows(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()
	tasks := []*primary.Task{focusTask("T1", "10:00", "11:00"), focusTask("T2", "14:00", "15:00")}
	f.source.set(tasks...)

	report, err := o.ScheduleForTasks(ctx, tasks, at("09:00"))
	require.NoError(t, err)
	assert.Len(t, report.Scheduled, 4)
	assert.Empty(t, report.Activations)

	assert.Equal(t, primary.OutcomeActivated, f.wake.fire(t, o, startID("T1"), at("10:00")).Outcome)
	assert.Equal(t, primary.OutcomeDeactivated, f.wake.fire(t, o, endID("T1"), at("11:00")).Outcome)
	assert.Equal(t, primary.OutcomeActivated, f.wake.fire(t, o, startID("T2"), at("14:00")).Outcome)
	assert.Equal(t, "T2", o.State(ctx).TaskID)
	assert.Equal(t, primary.OutcomeDeactivated, f.wake.fire(t, o, endID("T2"), at("15:00")).Outcome)

	assert.Equal(t, 2, f.shield.starts)
	assert.Equal(t, 2, f.shield.stops)
	assert.Equal(t, []string{EventActivated, EventDeactivated, EventActivated, EventDeactivated}, f.events.kinds())
}

func TestFullDay_OverlapHandsOverAtEnd(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()
	tasks := []*primary.Task{focusTask("T1", "10:00", "12:00"), focusTask("T2", "11:00", "13:00")}
	f.source.set(tasks...)

	_, err := o.ScheduleForTasks(ctx, tasks, at("09:00"))
	require.NoError(t, err)

	assert.Equal(t, primary.OutcomeActivated, f.wake.fire(t, o, startID("T1"), at("10:00")).Outcome)
	assert.Equal(t, primary.OutcomeHeld, f.wake.fire(t, o, startID("T2"), at("11:00")).Outcome)
	assert.Equal(t, primary.OutcomeHandedOver, f.wake.fire(t, o, endID("T1"), at("12:00")).Outcome)
	assert.Equal(t, "T2", o.State(ctx).TaskID)
	assert.Equal(t, primary.OutcomeDeactivated, f.wake.fire(t, o, endID("T2"), at("13:00")).Outcome)

	assert.Equal(t, 1, f.shield.starts)
	assert.Equal(t, 1, f.shield.stops)
	assert.Equal(t, []string{EventActivated, EventHandover, EventDeactivated}, f.events.kinds())
}

func TestHandleWake_EndWithoutTaskSourceDeactivates(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	_, err := o.ScheduleForTasks(ctx, []*primary.Task{focusTask("T1", "09:00", "10:00")}, at("09:10"))
	require.NoError(t, err)
	f.source.err = errBoom

	report := f.wake.fire(t, o, endID("T1"), at("10:00"))
	assert.Equal(t, primary.OutcomeDeactivated, report.Outcome)
	assert.Equal(t, 1, f.shield.stops)
}

func TestHandleWake_DuplicateDeliveryIsHarmless(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	tasks := []*primary.Task{focusTask("T1", "10:00", "11:00")}
	_, err := o.ScheduleForTasks(ctx, tasks, at("09:00"))
	require.NoError(t, err)
	start := f.wake.pending[startID("T1")].payload
	end := f.wake.pending[endID("T1")].payload

	for i := 0; i < 2; i++ {
		_, err := o.HandleWake(ctx, startID("T1"), start, at("10:00"))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.shield.starts)

	first, err := o.HandleWake(ctx, endID("T1"), end, at("11:00"))
	require.NoError(t, err)
	second, err := o.HandleWake(ctx, endID("T1"), end, at("11:00"))
	require.NoError(t, err)
	assert.Equal(t, primary.OutcomeDeactivated, first.Outcome)
	assert.Equal(t, primary.OutcomeStale, second.Outcome)
	assert.Equal(t, 1, f.shield.stops)
}

func TestHandleWake_LateStartIsDropped(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()

	_, err := o.ScheduleForTasks(context.Background(), []*primary.Task{focusTask("T1", "10:00", "11:00")}, at("09:00"))
	require.NoError(t, err)

	report := f.wake.fire(t, o, startID("T1"), at("11:05"))
	assert.Equal(t, primary.OutcomeStale, report.Outcome)
	assert.Equal(t, 0, f.shield.starts)
}

func TestHandleWake_MalformedAndDisabled(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	report, err := o.HandleWake(ctx, "focusguard.block.T1.start", []byte("{not json"), at("10:00"))
	require.NoError(t, err)
	assert.Equal(t, primary.OutcomeMalformed, report.Outcome)

	payload, err := blocking.EncodePayload(blocking.Payload{
		Kind: blocking.KindStart, TaskID: "T1", Title: "Focus", WindowEnd: at("11:00"),
	})
	require.NoError(t, err)
	f.settings.enabled = false
	report, err = o.HandleWake(ctx, startID("T1"), payload, at("10:00"))
	require.NoError(t, err)
	assert.Equal(t, primary.OutcomeDisabled, report.Outcome)
	assert.Equal(t, 0, f.shield.starts)
}

func TestHandleWake_ShieldWithoutTargets(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	payload, err := blocking.EncodePayload(blocking.Payload{
		Kind: blocking.KindStart, TaskID: "T1", Title: "Focus", WindowEnd: at("11:00"),
	})
	require.NoError(t, err)
	f.shield.targets = false

	report, err := o.HandleWake(ctx, startID("T1"), payload, at("10:00"))
	require.NoError(t, err)
	assert.Equal(t, primary.OutcomeShieldUnavailable, report.Outcome)
	assert.Equal(t, 0, f.shield.starts)
}

func TestScheduleForTasks_ReplacesPreviousTriggers(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	_, err := o.ScheduleForTasks(ctx, []*primary.Task{focusTask("T1", "10:00", "11:00")}, at("09:00"))
	require.NoError(t, err)
	// A foreign trigger outside the engine's namespace must survive.
	require.NoError(t, f.wake.Schedule(ctx, "other.reminder", at("12:00"), nil))

	report, err := o.ScheduleForTasks(ctx, []*primary.Task{focusTask("T2", "13:00", "14:00")}, at("09:05"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{startID("T1"), endID("T1")}, report.Cancelled)
	assert.ElementsMatch(t, []string{"other.reminder", startID("T2"), endID("T2")}, f.wake.ids())
}

func TestScheduleForTasks_NoTargetsClearsTriggers(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()
	tasks := []*primary.Task{focusTask("T1", "10:00", "11:00")}

	_, err := o.ScheduleForTasks(ctx, tasks, at("09:00"))
	require.NoError(t, err)

	f.shield.targets = false
	report, err := o.ScheduleForTasks(ctx, tasks, at("09:01"))
	require.NoError(t, err)
	assert.True(t, report.ShieldUnavailable)
	assert.Empty(t, report.Scheduled)
	assert.Empty(t, f.wake.ids())
}

func TestScheduleForTasks_PartialFailure(t *testing.T) {
	f := newFixture()
	f.wake.scheduleErr[endID("T1")] = errBoom
	o := f.orchestrator()

	tasks := []*primary.Task{focusTask("T1", "10:00", "11:00"), focusTask("T2", "12:00", "13:00")}
	report, err := o.ScheduleForTasks(context.Background(), tasks, at("09:00"))
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "T1", report.Failures[0].TaskID)
	assert.ElementsMatch(t, []string{startID("T2"), endID("T2")}, report.Scheduled)
	// The start of the failed task is not left behind.
	assert.ElementsMatch(t, []string{startID("T2"), endID("T2")}, f.wake.ids())
}

func TestScheduleForTasks_PendingListFailureCancelsByTask(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()
	tasks := []*primary.Task{focusTask("T1", "10:00", "11:00")}

	_, err := o.ScheduleForTasks(ctx, tasks, at("09:00"))
	require.NoError(t, err)

	f.wake.pendingErr = errBoom
	report, err := o.ScheduleForTasks(ctx, tasks, at("09:01"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{startID("T1"), endID("T1")}, report.Cancelled)
	assert.ElementsMatch(t, []string{startID("T1"), endID("T1")}, report.Scheduled)
}

func TestScheduleForTasks_SkipsIneligible(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()

	noBlocking := focusTask("T1", "10:00", "11:00")
	noBlocking.BlockingRequested = false
	done := focusTask("T2", "10:00", "11:00")
	done.Status = blocking.StatusCompleted
	tomorrow := focusTask("T3", "10:00", "11:00")
	tomorrow.Date = "2026-10-16"
	elapsed := focusTask("T4", "07:00", "08:00")

	report, err := o.ScheduleForTasks(context.Background(), []*primary.Task{noBlocking, done, tomorrow, elapsed}, at("09:00"))
	require.NoError(t, err)
	assert.Empty(t, report.Scheduled)
	assert.Len(t, report.Skipped, 4)
	assert.Empty(t, f.wake.ids())
}

func TestSetAutoBlocking_OffClearsEverything(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	tasks := []*primary.Task{focusTask("T1", "09:00", "10:00"), focusTask("T2", "11:00", "12:00")}
	_, err := o.ScheduleForTasks(ctx, tasks, at("09:10"))
	require.NoError(t, err)
	require.NoError(t, f.wake.Schedule(ctx, "other.reminder", at("12:00"), nil))

	require.NoError(t, o.SetAutoBlocking(ctx, false, at("09:15")))
	enabled, err := o.AutoBlockingEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Equal(t, []string{"other.reminder"}, f.wake.ids())
	assert.Equal(t, 1, f.shield.stops)
	assert.False(t, o.State(ctx).Active())

	pending, err := o.PendingTriggers(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSetAutoBlocking_OnThenRefresh(t *testing.T) {
	f := newFixture()
	f.settings.enabled = false
	f.source.set(focusTask("T1", "09:00", "10:00"))
	o := f.orchestrator()
	ctx := context.Background()

	require.NoError(t, o.SetAutoBlocking(ctx, true, at("09:10")))
	assert.Equal(t, 0, f.shield.starts)

	report, err := o.Refresh(ctx, at("09:10"))
	require.NoError(t, err)
	assert.Equal(t, "T1", o.State(ctx).TaskID)
	assert.Equal(t, []string{endID("T1")}, report.Schedule.Scheduled)
	assert.Equal(t, string(blocking.TransitionNone), report.Reconcile.Transition)
	assert.Equal(t, 1, f.shield.starts)
}

func TestReconcile_DeactivatesAfterWindow(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()
	tasks := []*primary.Task{focusTask("T1", "09:00", "10:00")}

	_, err := o.Reconcile(ctx, tasks, at("09:30"))
	require.NoError(t, err)

	// The end trigger was missed; reconciliation catches up.
	report, err := o.Reconcile(ctx, tasks, at("10:30"))
	require.NoError(t, err)
	assert.Equal(t, string(blocking.TransitionDeactivate), report.Transition)
	assert.Equal(t, primary.OutcomeDeactivated, report.Outcome)
	assert.Equal(t, "T1", report.Before.TaskID)
	assert.Equal(t, 1, f.shield.stops)
}

func TestReconcile_StopsStrayShield(t *testing.T) {
	f := newFixture()
	f.shield.engaged = true
	o := f.orchestratorWith(probingShield{f.shield})

	report, err := o.Reconcile(context.Background(), nil, at("09:00"))
	require.NoError(t, err)
	assert.True(t, report.StrayShieldStop)
	assert.Equal(t, 1, f.shield.stops)
	assert.Contains(t, f.events.kinds(), EventStrayStop)

	again, err := o.Reconcile(context.Background(), nil, at("09:01"))
	require.NoError(t, err)
	assert.False(t, again.StrayShieldStop)
	assert.Equal(t, 1, f.shield.stops)
}

func TestReconcileFromSource_NoSource(t *testing.T) {
	f := newFixture()
	o := NewOrchestrator(OrchestratorDeps{Shield: f.shield, Wake: f.wake, Settings: f.settings})

	_, err := o.ReconcileFromSource(context.Background(), at("09:00"))
	assert.True(t, errors.Is(err, errNoTaskSource))
}

func TestOrchestrator_SettingsFailure(t *testing.T) {
	f := newFixture()
	f.settings.err = errBoom
	o := f.orchestrator()

	_, err := o.ScheduleForTasks(context.Background(), nil, at("09:00"))
	assert.ErrorIs(t, err, errBoom)
	_, err = o.Reconcile(context.Background(), nil, at("09:00"))
	assert.ErrorIs(t, err, errBoom)
}

func TestOrchestrator_CancelledContextWhileBusy(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()

	release, err := o.acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.Reconcile(ctx, nil, at("09:00"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrchestrator_RecentEvents(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	_, err := o.ScheduleForTasks(ctx, []*primary.Task{focusTask("T1", "09:00", "10:00")}, at("09:30"))
	require.NoError(t, err)
	_, err = o.CancelForTask(ctx, "T1", at("09:40"))
	require.NoError(t, err)

	events, err := o.RecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventDeactivated, events[0].Kind)
	assert.Equal(t, EventActivated, events[1].Kind)
	assert.Equal(t, "T1", events[1].TaskID)

	bare := NewOrchestrator(OrchestratorDeps{Shield: f.shield, Wake: f.wake, Settings: f.settings})
	events, err = bare.RecentEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestReconcile_AdoptsEngagedShield(t *testing.T) {
	f := newFixture()
	f.shield.engaged = true
	o := f.orchestratorWith(probingShield{f.shield})
	ctx := context.Background()
	tasks := []*primary.Task{focusTask("T1", "09:00", "10:00")}

	report, err := o.Reconcile(ctx, tasks, at("09:30"))
	require.NoError(t, err)
	assert.Equal(t, primary.OutcomeActivated, report.Outcome)
	assert.Equal(t, "T1", o.State(ctx).TaskID)
	assert.Equal(t, 0, f.shield.starts, "an engaged shield is not started again")
	assert.Equal(t, []string{EventAdopted}, f.events.kinds())

	report, err = o.Reconcile(ctx, tasks, at("10:00"))
	require.NoError(t, err)
	assert.Equal(t, primary.OutcomeDeactivated, report.Outcome)
	assert.Equal(t, 1, f.shield.stops)
}

func TestScheduleForTasks_CallsDoNotInterleave(t *testing.T) {
	f := newFixture()
	o := f.orchestrator()
	ctx := context.Background()

	entered := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once
	f.wake.beforeSchedule = func(id string) {
		once.Do(func() {
			close(entered)
			<-proceed
		})
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := o.ScheduleForTasks(ctx, []*primary.Task{focusTask("T1", "10:00", "11:00")}, at("08:00"))
		assert.NoError(t, err)
	}()
	<-entered

	secondDone := make(chan struct{})
	go func() {
		defer wg.Done()
		defer close(secondDone)
		_, err := o.ScheduleForTasks(ctx, []*primary.Task{focusTask("T2", "12:00", "13:00")}, at("08:00"))
		assert.NoError(t, err)
	}()

	select {
	case <-secondDone:
		t.Fatal("second schedule finished while the first was still running")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, []string{"pending"}, f.wake.opLog())

	close(proceed)
	wg.Wait()

	assert.Equal(t, []string{
		"pending",
		"schedule " + startID("T1"),
		"schedule " + endID("T1"),
		"pending",
		"cancel " + endID("T1") + "," + startID("T1"),
		"schedule " + startID("T2"),
		"schedule " + endID("T2"),
	}, f.wake.opLog())
	assert.Equal(t, []string{endID("T2"), startID("T2")}, f.wake.ids())
}

func TestOrchestrator_LogsSkipsAndDrift(t *testing.T) {
	f := newFixture()
	var buf bytes.Buffer
	o := NewOrchestrator(OrchestratorDeps{
		Tasks:    f.source,
		Shield:   f.shield,
		Wake:     f.wake,
		Settings: f.settings,
		Logger:   slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	ctx := context.Background()

	_, err := o.ScheduleForTasks(ctx, []*primary.Task{focusTask("T4", "07:00", "08:00")}, at("09:00"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg="task not scheduled"`)
	assert.Contains(t, buf.String(), "task_id=T4")

	_, err = o.Reconcile(ctx, []*primary.Task{focusTask("T1", "09:00", "10:00")}, at("09:30"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg="state drift corrected"`)
	assert.Contains(t, buf.String(), `error="state drift"`)
}
