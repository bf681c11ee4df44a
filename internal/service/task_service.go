package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/tasktrack-api/internal/domain"
	"github.com/phrazzld/tasktrack-api/internal/platform/logger"
	"github.com/phrazzld/tasktrack-api/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans started by this package.
const TracerName = "github.com/phrazzld/tasktrack-api/internal/service"

// TaskService defines the task operations available to delivery mechanisms.
type TaskService interface {
	// List returns every task in ascending ID order.
	List(ctx context.Context) ([]*domain.Task, error)

	// Get returns a task by ID, or ErrTaskNotFound.
	Get(ctx context.Context, id int64) (*domain.Task, error)

	// Create validates input and stores a new task.
	// Returns a *domain.ValidationError without touching the store if input is invalid.
	Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error)

	// Update validates a partial update and merges it into the stored task.
	// Returns a *domain.ValidationError or ErrTaskNotFound.
	Update(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error)

	// Delete removes a task and returns its last state, or ErrTaskNotFound.
	Delete(ctx context.Context, id int64) (*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	store     store.TaskStore
	validator *domain.Validator
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// A nil tracer uses the global OpenTelemetry provider; a nil logger uses slog.Default().
func NewTaskService(
	taskStore store.TaskStore,
	validator *domain.Validator,
	tracer trace.Tracer,
	logger *slog.Logger,
) TaskService {
	if taskStore == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("taskStore cannot be nil")
	}
	if validator == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("validator cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		store:     taskStore,
		validator: validator,
		tracer:    tracer,
		logger:    logger.With(slog.String("component", "task_service")),
	}
}

var _ TaskService = (*taskServiceImpl)(nil)

// List implements TaskService.List
func (s *taskServiceImpl) List(ctx context.Context) ([]*domain.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.List")
	defer span.End()

	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, s.finish(ctx, span, NewTaskServiceError("list_tasks", "failed to list tasks", err))
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	s.finish(ctx, span, nil)
	return tasks, nil
}

// Get implements TaskService.Get
func (s *taskServiceImpl) Get(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.Get", trace.WithAttributes(attribute.Int64("task.id", id)))
	defer span.End()

	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.finish(ctx, span, NewTaskServiceError("get_task", "failed to get task", err))
	}

	s.finish(ctx, span, nil)
	return task, nil
}

// Create implements TaskService.Create
func (s *taskServiceImpl) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.Create")
	defer span.End()

	draft, err := s.validator.ValidateCreate(input)
	if err != nil {
		return nil, s.finish(ctx, span, err)
	}

	task, err := s.store.Create(ctx, draft)
	if err != nil {
		return nil, s.finish(ctx, span, NewTaskServiceError("create_task", "failed to create task", err))
	}

	span.SetAttributes(attribute.Int64("task.id", task.ID))
	s.finish(ctx, span, nil)
	return task, nil
}

// Update implements TaskService.Update
func (s *taskServiceImpl) Update(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.Update", trace.WithAttributes(attribute.Int64("task.id", id)))
	defer span.End()

	patch, err := s.validator.ValidateUpdate(input)
	if err != nil {
		return nil, s.finish(ctx, span, err)
	}

	task, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, s.finish(ctx, span, NewTaskServiceError("update_task", "failed to update task", err))
	}

	s.finish(ctx, span, nil)
	return task, nil
}

// Delete implements TaskService.Delete
func (s *taskServiceImpl) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.Delete", trace.WithAttributes(attribute.Int64("task.id", id)))
	defer span.End()

	task, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, s.finish(ctx, span, NewTaskServiceError("delete_task", "failed to delete task", err))
	}

	s.finish(ctx, span, nil)
	return task, nil
}

// finish records the outcome of err on span and returns err unchanged.
// Only system failures mark the span as an error.
func (s *taskServiceImpl) finish(ctx context.Context, span trace.Span, err error) error {
	outcome := Classify(err)
	span.SetAttributes(attribute.String("task.outcome", outcome.String()))

	if err == nil {
		span.SetStatus(codes.Ok, "")
		return nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	if outcome.IsClientError() {
		log.Debug("task operation rejected",
			slog.String("outcome", outcome.String()),
			slog.String("error", err.Error()))
		return err
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, outcome.String())
	log.Error("task operation failed",
		slog.String("outcome", outcome.String()),
		slog.String("error", err.Error()))
	return err
}
