package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/phrazzld/tasktrack-api/internal/domain"
	"github.com/phrazzld/tasktrack-api/internal/platform/logger"
	"github.com/phrazzld/tasktrack-api/internal/store"
)

// maxAttempts bounds optimistic-concurrency retries when reserving an ID.
const maxAttempts = 5

// TableClient is the subset of *aztables.Client the store uses.
type TableClient interface {
	CreateTable(ctx context.Context, options *aztables.CreateTableOptions) (aztables.CreateTableResponse, error)
	GetEntity(
		ctx context.Context,
		partitionKey, rowKey string,
		options *aztables.GetEntityOptions,
	) (aztables.GetEntityResponse, error)
	AddEntity(ctx context.Context, entity []byte, options *aztables.AddEntityOptions) (aztables.AddEntityResponse, error)
	UpdateEntity(
		ctx context.Context,
		entity []byte,
		options *aztables.UpdateEntityOptions,
	) (aztables.UpdateEntityResponse, error)
	DeleteEntity(
		ctx context.Context,
		partitionKey, rowKey string,
		options *aztables.DeleteEntityOptions,
	) (aztables.DeleteEntityResponse, error)
	NewListEntitiesPager(options *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
}

var _ TableClient = (*aztables.Client)(nil)

// NewClientFromConnectionString creates a client for tableName.
func NewClientFromConnectionString(connStr, tableName string) (*aztables.Client, error) {
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create table service client: %w", err)
	}
	return svc.NewClient(tableName), nil
}

// EnsureTable creates the table if it does not exist yet.
func EnsureTable(ctx context.Context, client TableClient) error {
	if _, err := client.CreateTable(ctx, nil); err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create table: %w", MapError(err))
	}
	return nil
}

// TableTaskStore implements store.TaskStore on Azure Table Storage.
type TableTaskStore struct {
	client TableClient
	logger *slog.Logger
}

// NewTableTaskStore creates a store on client.
// If logger is nil, a default logger will be used.
func NewTableTaskStore(client TableClient, logger *slog.Logger) *TableTaskStore {
	if client == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("table client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TableTaskStore{
		client: client,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TableTaskStore)(nil)

// List implements store.TaskStore.List
func (s *TableTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter := "PartitionKey eq '" + taskPartition + "'"
	pager := s.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})

	tasks := make([]*domain.Task, 0)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			log.Error("failed to list tasks", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "list", "failed to query tasks", MapError(err))
		}
		for _, raw := range resp.Entities {
			task, err := decodeTask(raw)
			if err != nil {
				log.Error("failed to decode task entity", slog.String("error", err.Error()))
				return nil, store.NewStoreError("task", "list", "failed to decode task", err)
			}
			tasks = append(tasks, task)
		}
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	log.Debug("listed tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TableTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	task, _, err := s.get(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get", id, err)
	}
	return task, nil
}

// Create implements store.TaskStore.Create
func (s *TableTaskStore) Create(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	id, err := s.nextID(ctx)
	if err != nil {
		return nil, s.fail(ctx, "create", 0, err)
	}

	task := draft.ToTask(id)
	payload, err := json.Marshal(newTaskEntity(task))
	if err != nil {
		return nil, s.fail(ctx, "create", id, err)
	}

	if _, err := s.client.AddEntity(ctx, payload, nil); err != nil {
		return nil, s.fail(ctx, "create", id, err)
	}

	log.Info("task created successfully",
		slog.Int64("task_id", id),
		slog.String("status", string(task.Status)))
	return task, nil
}

// Update implements store.TaskStore.Update
// The merged entity replaces the stored one unconditionally, so concurrent
// updates of the same task are last-write-wins.
func (s *TableTaskStore) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, _, err := s.get(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "update", id, err)
	}

	patch.Apply(task)
	payload, err := json.Marshal(newTaskEntity(task))
	if err != nil {
		return nil, s.fail(ctx, "update", id, err)
	}

	etag := azcore.ETagAny
	if _, err := s.client.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &etag,
		UpdateMode: aztables.UpdateModeReplace,
	}); err != nil {
		return nil, s.fail(ctx, "update", id, err)
	}

	log.Info("task updated successfully",
		slog.Int64("task_id", id),
		slog.String("status", string(task.Status)))
	return task, nil
}

// Delete implements store.TaskStore.Delete
func (s *TableTaskStore) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, _, err := s.get(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "delete", id, err)
	}

	etag := azcore.ETagAny
	if _, err := s.client.DeleteEntity(ctx, taskPartition, rowKey(id), &aztables.DeleteEntityOptions{
		IfMatch: &etag,
	}); err != nil {
		return nil, s.fail(ctx, "delete", id, err)
	}

	log.Info("task deleted successfully", slog.Int64("task_id", id))
	return task, nil
}

func (s *TableTaskStore) get(ctx context.Context, id int64) (*domain.Task, azcore.ETag, error) {
	resp, err := s.client.GetEntity(ctx, taskPartition, rowKey(id), nil)
	if err != nil {
		return nil, "", err
	}
	task, err := decodeTask(resp.Value)
	if err != nil {
		return nil, "", err
	}
	return task, resp.ETag, nil
}

// nextID reserves the next task ID from the sequence entity.
func (s *TableTaskStore) nextID(ctx context.Context) (int64, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		id, err := s.advanceSequence(ctx)
		if err == nil {
			return id, nil
		}
		if !isConcurrencyConflict(err) {
			return 0, err
		}
		lastErr = err
	}
	return 0, store.Classified(
		store.ErrStoreUnavailable,
		fmt.Errorf("failed to reserve task id after %d attempts: %w", maxAttempts, lastErr),
	)
}

func (s *TableTaskStore) advanceSequence(ctx context.Context) (int64, error) {
	resp, err := s.client.GetEntity(ctx, sequencePartition, sequenceRowKey, nil)
	if isNotFound(err) {
		payload, err := json.Marshal(newSequenceEntity(2))
		if err != nil {
			return 0, err
		}
		if _, err := s.client.AddEntity(ctx, payload, nil); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	var seq sequenceEntity
	if err := json.Unmarshal(resp.Value, &seq); err != nil {
		return 0, fmt.Errorf("failed to decode task sequence: %w", err)
	}

	id := seq.NextID
	payload, err := json.Marshal(newSequenceEntity(id + 1))
	if err != nil {
		return 0, err
	}

	etag := resp.ETag
	if _, err := s.client.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &etag,
		UpdateMode: aztables.UpdateModeReplace,
	}); err != nil {
		return 0, err
	}
	return id, nil
}

// fail logs err and wraps it for the store error taxonomy. A missing task
// becomes store.ErrTaskNotFound.
func (s *TableTaskStore) fail(ctx context.Context, op string, id int64, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if isNotFound(err) {
		log.Debug("task not found", slog.String("operation", op), slog.Int64("task_id", id))
		return fmt.Errorf("%w: %w", store.ErrTaskNotFound, err)
	}

	mapped := MapError(err)
	if store.IsConstraintViolation(mapped) {
		log.Warn("task rejected by table service",
			slog.String("operation", op),
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
	} else {
		log.Error("task table operation failed",
			slog.String("operation", op),
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
	}
	return store.NewStoreError("task", op, "table operation failed", mapped)
}

func decodeTask(raw []byte) (*domain.Task, error) {
	var ent taskEntity
	if err := json.Unmarshal(raw, &ent); err != nil {
		return nil, fmt.Errorf("failed to decode task entity: %w", err)
	}
	return ent.toTask()
}
