package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/phrazzld/tasktrack-api/internal/domain"
	"github.com/phrazzld/tasktrack-api/internal/platform/logger"
	"github.com/phrazzld/tasktrack-api/internal/store"
	"github.com/redis/go-redis/v9"
)

const listKey = "tasks:all"

func taskKey(id int64) string {
	return "task:" + strconv.FormatInt(id, 10)
}

// TaskCache wraps a TaskStore with Redis caching for GetByID and List.
type TaskCache struct {
	base   store.TaskStore
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewTaskCache creates a caching decorator around base. A nil client or a
// non-positive ttl disables caching and every call goes straight to base.
func NewTaskCache(base store.TaskStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *TaskCache {
	if base == nil {
		// ALLOW-PANIC: constructor misuse is a programming error
		panic("cache.NewTaskCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskCache{
		base:   base,
		redis:  client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "task_cache")),
	}
}

var _ store.TaskStore = (*TaskCache)(nil)

// List implements store.TaskStore.List
func (c *TaskCache) List(ctx context.Context) ([]*domain.Task, error) {
	var cached []*domain.Task
	if c.load(ctx, listKey, &cached) {
		return cached, nil
	}

	tasks, err := c.base.List(ctx)
	if err != nil {
		return nil, err
	}
	c.save(ctx, listKey, tasks)
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID
// Not-found results are not cached.
func (c *TaskCache) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var cached domain.Task
	if c.load(ctx, taskKey(id), &cached) {
		return &cached, nil
	}

	task, err := c.base.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.save(ctx, taskKey(id), task)
	return task, nil
}

// Create implements store.TaskStore.Create
func (c *TaskCache) Create(ctx context.Context, draft domain.TaskDraft) (*domain.Task, error) {
	task, err := c.base.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, listKey)
	return task, nil
}

// Update implements store.TaskStore.Update
func (c *TaskCache) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := c.base.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, taskKey(id), listKey)
	return task, nil
}

// Delete implements store.TaskStore.Delete
func (c *TaskCache) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := c.base.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, taskKey(id), listKey)
	return task, nil
}

func (c *TaskCache) enabled() bool {
	return c.redis != nil && c.ttl > 0
}

// load reports whether key was found and decoded into dst.
func (c *TaskCache) load(ctx context.Context, key string, dst any) bool {
	if !c.enabled() {
		return false
	}
	log := logger.FromContextOrDefault(ctx, c.logger)

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn("cache read failed, using store", slog.String("key", key), slog.String("error", err.Error()))
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn("discarding undecodable cache entry", slog.String("key", key), slog.String("error", err.Error()))
		c.evict(ctx, key)
		return false
	}

	log.Debug("cache hit", slog.String("key", key))
	return true
}

func (c *TaskCache) save(ctx context.Context, key string, value any) {
	if !c.enabled() {
		return
	}
	log := logger.FromContextOrDefault(ctx, c.logger)

	data, err := json.Marshal(value)
	if err != nil {
		log.Warn("failed to encode cache entry", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// evict removes keys. A failed eviction leaves a stale entry that expires
// after the ttl.
func (c *TaskCache) evict(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Warn("cache eviction failed",
			slog.Any("keys", keys),
			slog.String("error", err.Error()))
	}
}

// NewRedisClient creates a client from a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
