package store

import (
	"context"

	"github.com/phrazzld/tasktrack-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Every operation is atomic with respect to a single task: either all of a
// write's field changes become visible or none do.
type TaskStore interface {
	// List returns every task ordered by ascending ID.
	// An empty store yields an empty, non-nil slice.
	List(ctx context.Context) ([]*domain.Task, error)

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Create persists a new task, assigning it a fresh unique ID.
	// Returns ErrConstraintViolation if the backend rejects the record.
	Create(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error)

	// Update merges patch into the stored task and returns the result.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task and returns its last stored state.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) (*domain.Task, error)
}
