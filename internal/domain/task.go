package domain

import "fmt"

// TaskStatus represents the completion state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
)

// Length limits for task fields, counted in characters.
const (
	TitleMaxLength              = 100
	DefaultDescriptionMaxLength = 500
)

// TaskStatuses lists every valid status in display order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusPending, TaskStatusDone}
}

// IsValid reports whether s is one of the known task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusDone:
		return true
	default:
		return false
	}
}

// ParseTaskStatus converts a raw string into a TaskStatus.
// Returns ErrInvalidTaskStatus for any value outside the enumeration.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	status := TaskStatus(raw)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTaskStatus, raw)
	}
	return status, nil
}

// Task is a single to-do item. The ID is assigned by the store on creation
// and never changes afterward.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
}

// Clone returns a deep copy of the task so callers can hand out copies
// without sharing the description pointer.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	return &c
}

// TaskDraft is a validated create request. Only ValidateCreate produces one.
type TaskDraft struct {
	Title       string
	Description *string
	Status      TaskStatus
}

// ToTask builds the Task that results from persisting the draft under id.
func (d TaskDraft) ToTask(id int64) *Task {
	t := &Task{
		ID:     id,
		Title:  d.Title,
		Status: d.Status,
	}
	if d.Description != nil {
		desc := *d.Description
		t.Description = &desc
	}
	return t
}

// TaskPatch is a validated partial update. Nil Title or Status and an unset
// Description leave the stored value untouched. A Description that is set
// to null clears it.
type TaskPatch struct {
	Title       *string
	Description Optional[string]
	Status      *TaskStatus
}

// IsEmpty reports whether the patch would change nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && !p.Description.Set && p.Status == nil
}

// Apply merges the patch into t field by field.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description.Set {
		t.Description = p.Description.Ptr()
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}
