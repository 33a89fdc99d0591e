package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/focusguard/internal/core/blocking"
	"github.com/example/focusguard/internal/core/task"
	"github.com/example/focusguard/internal/ctxutil"
	"github.com/example/focusguard/internal/ports/primary"
	"github.com/example/focusguard/internal/ports/secondary"
)

// TaskServiceImpl implements the TaskService interface.
type TaskServiceImpl struct {
	taskRepo secondary.TaskRepository
	blocking primary.BlockingService
	now      func() time.Time
	logger   *slog.Logger
}

// NewTaskService creates a new TaskService with injected dependencies.
// blockingService may be nil, in which case mutations do not touch the schedule.
func NewTaskService(
	taskRepo secondary.TaskRepository,
	blockingService primary.BlockingService,
	now func() time.Time,
	logger *slog.Logger,
) *TaskServiceImpl {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		taskRepo: taskRepo,
		blocking: blockingService,
		now:      now,
		logger:   logger.With("component", "tasks"),
	}
}

// CreateTask creates a new task.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, req primary.CreateTaskRequest) (*primary.CreateTaskResponse, error) {
	if req.Date == "" {
		req.Date = blocking.Day(s.now())
	}

	guardCtx := task.CreateTaskContext{
		Title:       req.Title,
		Date:        req.Date,
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
	}
	if result := task.CanCreateTask(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	// Get next ID
	nextID, err := s.taskRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	// Create record
	record := &secondary.TaskRecord{
		ID:                nextID,
		Title:             req.Title,
		Date:              req.Date,
		WindowStart:       req.WindowStart,
		WindowEnd:         req.WindowEnd,
		BlockingRequested: req.BlockingRequested,
		Status:            blocking.StatusPending,
	}

	if err := s.taskRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	// Fetch created task
	created, err := s.taskRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created task: %w", err)
	}

	s.afterMutation(ctx, nil, created)

	return &primary.CreateTaskResponse{
		TaskID: created.ID,
		Task:   recordToTask(created),
	}, nil
}

// GetTask retrieves a task by ID.
func (s *TaskServiceImpl) GetTask(ctx context.Context, taskID string) (*primary.Task, error) {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return recordToTask(record), nil
}

// ListTasks lists tasks with optional filters.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, filters primary.TaskFilters) ([]*primary.Task, error) {
	if filters.Status != "" && !blocking.ValidStatus(filters.Status) {
		return nil, fmt.Errorf("invalid status %q", filters.Status)
	}

	records, err := s.taskRepo.List(ctx, secondary.TaskFilters{
		Date:   filters.Date,
		Status: filters.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*primary.Task, len(records))
	for i, r := range records {
		tasks[i] = recordToTask(r)
	}
	return tasks, nil
}

// UpdateTask edits a task. Moving or clearing a window drops its triggers
// before the schedule is rebuilt.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, req primary.UpdateTaskRequest) error {
	before, err := s.taskRepo.GetByID(ctx, req.TaskID)
	if err != nil {
		return err
	}

	after := *before
	if req.Title != nil {
		after.Title = *req.Title
	}
	if req.Date != nil {
		after.Date = *req.Date
	}
	if req.WindowStart != nil {
		after.WindowStart = *req.WindowStart
	}
	if req.WindowEnd != nil {
		after.WindowEnd = *req.WindowEnd
	}
	if req.BlockingRequested != nil {
		after.BlockingRequested = *req.BlockingRequested
	}

	guardCtx := task.CreateTaskContext{
		Title:       after.Title,
		Date:        after.Date,
		WindowStart: after.WindowStart,
		WindowEnd:   after.WindowEnd,
	}
	if result := task.CanCreateTask(guardCtx); !result.Allowed {
		return result.Error()
	}

	if err := s.taskRepo.Update(ctx, &after); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	s.afterMutation(ctx, before, &after)
	return nil
}

// StartTask marks a pending task as in progress.
func (s *TaskServiceImpl) StartTask(ctx context.Context, taskID string) error {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	guardCtx := task.StatusTransitionContext{TaskID: taskID, Status: record.Status}
	if result := task.CanStartTask(guardCtx); !result.Allowed {
		return result.Error()
	}

	return s.setStatus(ctx, record, blocking.StatusInProgress)
}

// CompleteTask marks a task as completed.
func (s *TaskServiceImpl) CompleteTask(ctx context.Context, taskID string) error {
	return s.closeTask(ctx, taskID, blocking.StatusCompleted)
}

// SkipTask marks a task as skipped.
func (s *TaskServiceImpl) SkipTask(ctx context.Context, taskID string) error {
	return s.closeTask(ctx, taskID, blocking.StatusSkipped)
}

// DeleteTask deletes a task.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, taskID string) error {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.afterMutation(ctx, record, nil)
	return nil
}

func (s *TaskServiceImpl) closeTask(ctx context.Context, taskID, status string) error {
	record, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	guardCtx := task.StatusTransitionContext{TaskID: taskID, Status: record.Status}
	if result := task.CanCloseTask(guardCtx); !result.Allowed {
		return result.Error()
	}

	return s.setStatus(ctx, record, status)
}

func (s *TaskServiceImpl) setStatus(ctx context.Context, before *secondary.TaskRecord, status string) error {
	if err := s.taskRepo.UpdateStatus(ctx, before.ID, status); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	after := *before
	after.Status = status
	s.afterMutation(ctx, before, &after)
	return nil
}

// afterMutation keeps the blocking schedule in step with a persisted change.
// The change itself has succeeded, so failures here are only logged; the next
// refresh converges again.
func (s *TaskServiceImpl) afterMutation(ctx context.Context, before, after *secondary.TaskRecord) {
	if s.blocking == nil {
		return
	}
	ctx = ctxutil.WithTrigger(ctx, ctxutil.TriggerMutation)
	now := s.now()

	if before != nil {
		mutation := task.MutationContext{Before: recordToCoreTask(before)}
		if after != nil {
			a := recordToCoreTask(after)
			mutation.After = &a
		}
		if task.RequiresTriggerCancel(mutation) {
			if _, err := s.blocking.CancelForTask(ctx, before.ID, now); err != nil {
				s.logger.WarnContext(ctx, "failed to cancel blocking for task", "task_id", before.ID, "error", err)
			}
		}
	}

	if _, err := s.blocking.Refresh(ctx, now); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh blocking schedule", "error", err)
	}
}

// Helper functions

func recordToTask(r *secondary.TaskRecord) *primary.Task {
	return &primary.Task{
		ID:                r.ID,
		Title:             r.Title,
		Date:              r.Date,
		WindowStart:       r.WindowStart,
		WindowEnd:         r.WindowEnd,
		BlockingRequested: r.BlockingRequested,
		Status:            r.Status,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func recordToCoreTask(r *secondary.TaskRecord) blocking.Task {
	return blocking.Task{
		ID:                r.ID,
		Title:             r.Title,
		Date:              r.Date,
		WindowStart:       r.WindowStart,
		WindowEnd:         r.WindowEnd,
		BlockingRequested: r.BlockingRequested,
		Status:            r.Status,
	}
}

// Ensure TaskServiceImpl implements the interface
var _ primary.TaskService = (*TaskServiceImpl)(nil)
