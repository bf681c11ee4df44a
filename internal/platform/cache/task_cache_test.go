package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/phrazzld/tasktrack-api/internal/domain"
	"github.com/phrazzld/tasktrack-api/internal/platform/logger"
	"github.com/phrazzld/tasktrack-api/internal/platform/memory"
	"github.com/phrazzld/tasktrack-api/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how often reads reach the decorated store.
type countingStore struct {
	store.TaskStore
	lists int
	gets  int
}

func (s *countingStore) List(ctx context.Context) ([]*domain.Task, error) {
	s.lists++
	return s.TaskStore.List(ctx)
}

func (s *countingStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	s.gets++
	return s.TaskStore.GetByID(ctx, id)
}

type fixture struct {
	mr    *miniredis.Miniredis
	base  *countingStore
	cache *TaskCache
	logs  *logger.TestLogBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log, buf := logger.NewTestLogger()
	base := &countingStore{TaskStore: memory.NewTaskStore(log)}
	return &fixture{
		mr:    mr,
		base:  base,
		cache: NewTaskCache(base, client, time.Minute, log),
		logs:  buf,
	}
}

func TestTaskCache_GetByIDMissThenHit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.cache.Create(ctx, domain.TaskDraft{Title: "Buy milk", Status: domain.TaskStatusPending})
	require.NoError(t, err)

	first, err := f.cache.GetByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := f.cache.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.base.gets)

	ttl := f.mr.TTL(taskKey(created.ID))
	assert.True(t, ttl > 0 && ttl <= time.Minute, "unexpected TTL %v", ttl)
}

func TestTaskCache_NotFoundNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.cache.GetByID(ctx, 42)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	}
	assert.Equal(t, 2, f.base.gets)
	assert.False(t, f.mr.Exists(taskKey(42)))
}

func TestTaskCache_ListInvalidatedByWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tasks, err := f.cache.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.True(t, f.mr.Exists(listKey))

	_, err = f.cache.Create(ctx, domain.TaskDraft{Title: "a", Status: domain.TaskStatusPending})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(listKey), "create must evict the list")

	tasks, err = f.cache.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	tasks, err = f.cache.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 2, f.base.lists)
}

func TestTaskCache_UpdateAndDeleteEvict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.cache.Create(ctx, domain.TaskDraft{Title: "a", Status: domain.TaskStatusPending})
	require.NoError(t, err)
	_, err = f.cache.GetByID(ctx, created.ID)
	require.NoError(t, err)
	_, err = f.cache.List(ctx)
	require.NoError(t, err)

	done := domain.TaskStatusDone
	updated, err := f.cache.Update(ctx, created.ID, domain.TaskPatch{Status: &done})
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(taskKey(created.ID)))
	assert.False(t, f.mr.Exists(listKey))

	got, err := f.cache.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got, "reads after update must not be stale")

	_, err = f.cache.Delete(ctx, created.ID)
	require.NoError(t, err)
	_, err = f.cache.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskCache_RedisFailureFallsBackToStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.cache.Create(ctx, domain.TaskDraft{Title: "a", Status: domain.TaskStatusPending})
	require.NoError(t, err)

	f.mr.SetError("ERR simulated outage")

	got, err := f.cache.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	tasks, err := f.cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	assert.Contains(t, f.logs.String(), "cache read failed")
}

func TestTaskCache_CorruptEntryDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.cache.Create(ctx, domain.TaskDraft{Title: "a", Status: domain.TaskStatusPending})
	require.NoError(t, err)
	require.NoError(t, f.mr.Set(taskKey(created.ID), "{not json"))

	got, err := f.cache.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	raw, err := f.mr.Get(taskKey(created.ID))
	require.NoError(t, err)
	var cached domain.Task
	assert.NoError(t, json.Unmarshal([]byte(raw), &cached), "entry must be repopulated with valid JSON")
}

func TestTaskCache_DisabledWithoutClient(t *testing.T) {
	base := &countingStore{TaskStore: memory.NewTaskStore(nil)}
	c := NewTaskCache(base, nil, time.Minute, nil)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)
	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, base.lists)
}

func TestNewTaskCache_PanicsOnNilStore(t *testing.T) {
	assert.Panics(t, func() { NewTaskCache(nil, nil, time.Minute, nil) })
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, client.Options().DB)
	_ = client.Close()

	_, err = NewRedisClient("http://not-redis")
	assert.Error(t, err)
}
