package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/ports/primary"
	"github.com/example/focusguard/internal/ports/secondary"
)

var testLoc = time.FixedZone("test", 2*60*60)

const testDay = "2026-10-15"

func at(clock string) time.Time {
	h, m, err := blocking.ParseClock(clock)
	if err != nil {
		panic(err)
	}
	return time.Date(2026, 10, 15, h, m, 0, 0, testLoc)
}

func focusTask(id, start, end string) *primary.Task {
	return &primary.Task{
		ID:                id,
		Title:             "Focus " + id,
		Date:              testDay,
		WindowStart:       start,
		WindowEnd:         end,
		BlockingRequested: true,
		Status:            blocking.StatusPending,
	}
}

func taskRecord(t *primary.Task) *secondary.TaskRecord {
	return &secondary.TaskRecord{
		ID:                t.ID,
		Title:             t.Title,
		Date:              t.Date,
		WindowStart:       t.WindowStart,
		WindowEnd:         t.WindowEnd,
		BlockingRequested: t.BlockingRequested,
		Status:            t.Status,
	}
}

// ============================================================================
// Fake wake scheduler
// ============================================================================

type fakeTrigger struct {
	id      string
	fireAt  time.Time
	payload []byte
}

// fakeWake implements secondary.WakeScheduler and secondary.WakeInbox.
// Triggers are fired by the test at logical times, never by a clock.
type fakeWake struct {
	mu             sync.Mutex
	pending        map[string]fakeTrigger
	scheduleCalls  int
	cancelCalls    int
	pendingCalls   int
	scheduleErr    map[string]error // by trigger id
	cancelErr      error
	pendingErr     error
	cancelled      []string
	ops            []string        // schedule/cancel/pending calls in order
	beforeSchedule func(id string) // runs before the fake takes its lock
}

var _ secondary.WakeScheduler = (*fakeWake)(nil)
var _ secondary.WakeInbox = (*fakeWake)(nil)

func newFakeWake() *fakeWake {
	return &fakeWake{
		pending:     make(map[string]fakeTrigger),
		scheduleErr: make(map[string]error),
	}
}

func (f *fakeWake) Schedule(ctx context.Context, id string, fireAt time.Time, payload []byte) error {
	if f.beforeSchedule != nil {
		f.beforeSchedule(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduleCalls++
	f.ops = append(f.ops, "schedule "+id)
	if err := f.scheduleErr[id]; err != nil {
		return err
	}
	f.pending[id] = fakeTrigger{id: id, fireAt: fireAt, payload: payload}
	return nil
}

func (f *fakeWake) Cancel(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	f.ops = append(f.ops, "cancel "+strings.Join(ids, ","))
	if f.cancelErr != nil {
		return f.cancelErr
	}
	for _, id := range ids {
		delete(f.pending, id)
		f.cancelled = append(f.cancelled, id)
	}
	return nil
}

func (f *fakeWake) Pending(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingCalls++
	f.ops = append(f.ops, "pending")
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	ids := make([]string, 0, len(f.pending))
	for id := range f.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeWake) Due(ctx context.Context, now time.Time) ([]secondary.FiredTrigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []secondary.FiredTrigger
	for _, t := range f.pending {
		if !t.fireAt.After(now) {
			due = append(due, secondary.FiredTrigger{ID: t.id, FireAt: t.fireAt, Payload: t.payload})
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].FireAt.Equal(due[j].FireAt) {
			return due[i].FireAt.Before(due[j].FireAt)
		}
		return due[i].ID < due[j].ID
	})
	return due, nil
}

func (f *fakeWake) Ack(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.pending, id)
	}
	return nil
}

func (f *fakeWake) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scheduleCalls + f.cancelCalls + f.pendingCalls
}

func (f *fakeWake) opLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func (f *fakeWake) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[id]
	return ok
}

func (f *fakeWake) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.pending))
	for id := range f.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// fire delivers a pending trigger synchronously, as the OS would at its fire time.
func (f *fakeWake) fire(t *testing.T, o *Orchestrator, id string, now time.Time) *primary.DeliveryReport {
	t.Helper()
	f.mu.Lock()
	trigger, ok := f.pending[id]
	delete(f.pending, id)
	f.mu.Unlock()
	if !ok {
		t.Fatalf("trigger %s is not pending", id)
	}
	report, err := o.HandleWake(context.Background(), id, trigger.payload, now)
	if err != nil {
		t.Fatalf("HandleWake(%s) failed: %v", id, err)
	}
	return report
}

// ============================================================================
// Fake shield
// ============================================================================

// fakeShield implements secondary.ShieldService and counts calls.
type fakeShield struct {
	mu         sync.Mutex
	starts     int
	stops      int
	targetCall int
	probes     int
	engaged    bool
	targets    bool
	targetsErr error
	startErr   error
	stopErr    error
	onStart    func() // runs during StartBlocking, without the controller lock
}

var _ secondary.ShieldService = (*fakeShield)(nil)

func newFakeShield() *fakeShield {
	return &fakeShield{targets: true}
}

func (f *fakeShield) StartBlocking(ctx context.Context) error {
	f.mu.Lock()
	f.starts++
	hook := f.onStart
	err := f.startErr
	if err == nil {
		f.engaged = true
	}
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeShield) StopBlocking(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	if f.stopErr != nil {
		return f.stopErr
	}
	f.engaged = false
	return nil
}

func (f *fakeShield) TargetsConfigured(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targetCall++
	return f.targets, f.targetsErr
}

func (f *fakeShield) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts + f.stops + f.targetCall + f.probes
}

// probingShield also reports whether it is engaged.
type probingShield struct {
	*fakeShield
}

var _ secondary.ShieldProbe = probingShield{}

func (p probingShield) Engaged(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes++
	return p.engaged, nil
}

// ============================================================================
// Fake settings, task source and event log
// ============================================================================

type fakeSettings struct {
	mu      sync.Mutex
	enabled bool
	err     error
}

func (f *fakeSettings) AutoBlockingEnabled(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled, f.err
}

func (f *fakeSettings) SetAutoBlockingEnabled(ctx context.Context, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.enabled = enabled
	return nil
}

type fakeTaskSource struct {
	mu    sync.Mutex
	tasks []*primary.Task
	err   error
}

func (f *fakeTaskSource) TasksForDay(ctx context.Context, day string) ([]*secondary.TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var records []*secondary.TaskRecord
	for _, t := range f.tasks {
		if t.Date == day {
			records = append(records, taskRecord(t))
		}
	}
	return records, nil
}

func (f *fakeTaskSource) set(tasks ...*primary.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = tasks
}

type fakeEventLog struct {
	mu     sync.Mutex
	events []*secondary.BlockEventRecord
	err    error
}

func (f *fakeEventLog) Append(ctx context.Context, event *secondary.BlockEventRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventLog) Recent(ctx context.Context, limit int) ([]*secondary.BlockEventRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*secondary.BlockEventRecord
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.events[i])
	}
	return out, nil
}

func (f *fakeEventLog) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]string, len(f.events))
	for i, e := range f.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// ============================================================================
// Fixture
// ============================================================================

type fixture struct {
	wake     *fakeWake
	shield   *fakeShield
	settings *fakeSettings
	source   *fakeTaskSource
	events   *fakeEventLog
}

func newFixture() *fixture {
	return &fixture{
		wake:     newFakeWake(),
		shield:   newFakeShield(),
		settings: &fakeSettings{enabled: true},
		source:   &fakeTaskSource{},
		events:   &fakeEventLog{},
	}
}

func (f *fixture) orchestrator() *Orchestrator {
	return f.orchestratorWith(f.shield)
}

func (f *fixture) orchestratorWith(shield secondary.ShieldService) *Orchestrator {
	return NewOrchestrator(OrchestratorDeps{
		Tasks:    f.source,
		Shield:   shield,
		Wake:     f.wake,
		Settings: f.settings,
		Events:   f.events,
	})
}

var errBoom = errors.New("boom")

// ============================================================================
// Mock task repository
// ============================================================================

// mockTaskRepository implements secondary.TaskRepository for testing.
type mockTaskRepository struct {
	tasks           map[string]*secondary.TaskRecord
	nextID          int
	createErr       error
	getErr          error
	updateErr       error
	updateStatusErr error
	deleteErr       error
	listErr         error
}

var _ secondary.TaskRepository = (*mockTaskRepository)(nil)

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{
		tasks:  make(map[string]*secondary.TaskRecord),
		nextID: 1,
	}
}

func (m *mockTaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if task, ok := m.tasks[id]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, errors.New("task " + id + " not found")
}

func (m *mockTaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.TaskRecord
	for _, t := range m.tasks {
		if filters.Date != "" && t.Date != filters.Date {
			continue
		}
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		copied := *t
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockTaskRepository) Update(ctx context.Context, task *secondary.TaskRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.tasks[task.ID]; !ok {
		return errors.New("task " + task.ID + " not found")
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return errors.New("task " + id + " not found")
	}
	task.Status = status
	return nil
}

func (m *mockTaskRepository) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepository) GetNextID(ctx context.Context) (string, error) {
	id := fmt.Sprintf("TASK-%03d", m.nextID)
	m.nextID++
	return id, nil
}

// TasksForDay lets the repository double as the orchestrator's task source.
func (m *mockTaskRepository) TasksForDay(ctx context.Context, day string) ([]*secondary.TaskRecord, error) {
	return m.List(ctx, secondary.TaskFilters{Date: day})
}
