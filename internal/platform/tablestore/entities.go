package tablestore

import (
	"fmt"
	"strconv"

	"github.com/phrazzld/tasktrack-api/internal/domain"
)

// Entity layout.
const (
	taskPartition     = "task"
	sequencePartition = "meta"
	sequenceRowKey    = "task_sequence"

	edmInt64 = "Edm.Int64"
)

// taskEntity is the stored shape of a task. Description is omitted when
// unset so a replace clears it.
type taskEntity struct {
	PartitionKey string  `json:"PartitionKey"`
	RowKey       string  `json:"RowKey"`
	Title        string  `json:"Title"`
	Description  *string `json:"Description,omitempty"`
	Status       string  `json:"Status"`
}

// sequenceEntity holds the next ID to hand out.
type sequenceEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	NextID       int64  `json:"NextID,string"`
	NextIDType   string `json:"NextID@odata.type"`
}

func rowKey(id int64) string {
	return fmt.Sprintf("%019d", id)
}

func newTaskEntity(t *domain.Task) taskEntity {
	return taskEntity{
		PartitionKey: taskPartition,
		RowKey:       rowKey(t.ID),
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
	}
}

func (e taskEntity) toTask() (*domain.Task, error) {
	id, err := strconv.ParseInt(e.RowKey, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid task row key %q: %w", e.RowKey, err)
	}

	status, err := domain.ParseTaskStatus(e.Status)
	if err != nil {
		return nil, fmt.Errorf("task %d has corrupt status: %w", id, err)
	}

	return &domain.Task{
		ID:          id,
		Title:       e.Title,
		Description: e.Description,
		Status:      status,
	}, nil
}

func newSequenceEntity(next int64) sequenceEntity {
	return sequenceEntity{
		PartitionKey: sequencePartition,
		RowKey:       sequenceRowKey,
		NextID:       next,
		NextIDType:   edmInt64,
	}
}
