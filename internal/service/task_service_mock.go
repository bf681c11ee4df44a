package service

import (
	"context"

	"github.com/phrazzld/tasktrack-api/internal/domain"
)

// MockTaskService is a function-field implementation of TaskService for
// handler tests. Unset functions return nil results and no error.
type MockTaskService struct {
	ListFn   func(ctx context.Context) ([]*domain.Task, error)
	GetFn    func(ctx context.Context, id int64) (*domain.Task, error)
	CreateFn func(ctx context.Context, input domain.TaskInput) (*domain.Task, error)
	UpdateFn func(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error)
	DeleteFn func(ctx context.Context, id int64) (*domain.Task, error)
}

var _ TaskService = (*MockTaskService)(nil)

// List implements TaskService.List
func (m *MockTaskService) List(ctx context.Context) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

// Get implements TaskService.Get
func (m *MockTaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, nil
}

// Create implements TaskService.Create
func (m *MockTaskService) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, input)
	}
	return nil, nil
}

// Update implements TaskService.Update
func (m *MockTaskService) Update(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, input)
	}
	return nil, nil
}

// Delete implements TaskService.Delete
func (m *MockTaskService) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil, nil
}
