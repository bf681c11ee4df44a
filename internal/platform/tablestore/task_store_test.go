package tablestore

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/phrazzld/tasktrack-api/internal/domain"
	"github.com/phrazzld/tasktrack-api/internal/platform/logger"
	"github.com/phrazzld/tasktrack-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*TableTaskStore, *fakeTable) {
	t.Helper()
	fake := newFakeTable()
	log, _ := logger.NewTestLogger()
	return NewTableTaskStore(fake, log), fake
}

func pendingDraft(title string) domain.TaskDraft {
	return domain.TaskDraft{Title: title, Status: domain.TaskStatusPending}
}

func TestEnsureTable(t *testing.T) {
	t.Parallel()
	fake := newFakeTable()
	ctx := context.Background()

	require.NoError(t, EnsureTable(ctx, fake))
	require.NoError(t, EnsureTable(ctx, fake), "an existing table is not an error")

	fake.failWith("CreateTable", responseError(http.StatusForbidden, "AuthorizationFailure"))
	assert.Error(t, EnsureTable(ctx, fake))
}

func TestNewTableTaskStore_PanicsOnNilClient(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewTableTaskStore(nil, nil) })
}

func TestTableTaskStore_Lifecycle(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, pendingDraft("Buy milk"))
	require.NoError(t, err)
	assert.Equal(t, &domain.Task{ID: 1, Title: "Buy milk", Status: domain.TaskStatusPending}, created)

	updated, err := s.Update(ctx, 1, domain.TaskPatch{Description: domain.Some("2%")})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "2%", *updated.Description)
	assert.Equal(t, domain.TaskStatusPending, updated.Status)

	got, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	deleted, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, updated, deleted)

	_, err = s.Delete(ctx, 1)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	_, err = s.GetByID(ctx, 1)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTableTaskStore_MissingIDs(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetByID(ctx, 999)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	done := domain.TaskStatusDone
	_, err = s.Update(ctx, 999, domain.TaskPatch{Status: &done})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = s.Delete(ctx, 999)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.False(t, store.IsUnavailable(err))
}

func TestTableTaskStore_SequentialIDsNotReused(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		task, err := s.Create(ctx, pendingDraft("t"))
		require.NoError(t, err)
		assert.Equal(t, want, task.ID)
	}

	_, err := s.Delete(ctx, 3)
	require.NoError(t, err)

	task, err := s.Create(ctx, pendingDraft("t"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), task.ID)
}

func TestTableTaskStore_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	ctx := context.Background()

	// Seed the sequence so every goroutine takes the ETag path.
	_, err := s.Create(ctx, pendingDraft("seed"))
	require.NoError(t, err)

	const n = 4
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := s.Create(ctx, pendingDraft("t"))
			if err == nil {
				ids <- task.ID
			} else {
				assert.True(t, store.IsUnavailable(err), "only exhausted retries may fail: %v", err)
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestTableTaskStore_ListOrderedByID(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	ctx := context.Background()

	tasks, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	for i := 0; i < 11; i++ {
		_, err := s.Create(ctx, pendingDraft("t"))
		require.NoError(t, err)
	}

	tasks, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 11, "the sequence entity must not be listed")
	for i, task := range tasks {
		assert.Equal(t, int64(i+1), task.ID)
	}
}

func TestTableTaskStore_UpdateOfDeletedTask(t *testing.T) {
	t.Parallel()
	s, fake := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, pendingDraft("Buy milk"))
	require.NoError(t, err)

	// The task disappears between the read and the replace.
	fake.failWith("UpdateEntity", responseError(http.StatusNotFound, "ResourceNotFound"))

	done := domain.TaskStatusDone
	_, err = s.Update(ctx, 1, domain.TaskPatch{Status: &done})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTableTaskStore_UpdateClearsDescription(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	ctx := context.Background()

	desc := "whole"
	_, err := s.Create(ctx, domain.TaskDraft{Title: "t", Description: &desc, Status: domain.TaskStatusPending})
	require.NoError(t, err)

	updated, err := s.Update(ctx, 1, domain.TaskPatch{Description: domain.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)

	got, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got.Description)
}

func TestTableTaskStore_ErrorClassification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("throttled read", func(t *testing.T) {
		s, fake := newTestStore(t)
		fake.failWith("GetEntity", responseError(http.StatusTooManyRequests, "TooManyRequests"))
		_, err := s.GetByID(ctx, 1)
		assert.True(t, store.IsUnavailable(err))
	})

	t.Run("server error on list", func(t *testing.T) {
		s, fake := newTestStore(t)
		fake.failWith("ListEntities", responseError(http.StatusServiceUnavailable, "ServerBusy"))
		_, err := s.List(ctx)
		assert.True(t, store.IsUnavailable(err))
	})

	t.Run("rejected entity", func(t *testing.T) {
		s, fake := newTestStore(t)
		_, err := s.Create(ctx, pendingDraft("seed"))
		require.NoError(t, err)

		fake.failWith("AddEntity", responseError(http.StatusBadRequest, "PropertyValueTooLarge"))
		_, err = s.Create(ctx, pendingDraft("t"))
		assert.True(t, store.IsConstraintViolation(err))
	})

	t.Run("deadline", func(t *testing.T) {
		s, fake := newTestStore(t)
		fake.failWith("GetEntity", context.DeadlineExceeded)
		_, err := s.GetByID(ctx, 1)
		assert.True(t, store.IsUnavailable(err))
	})

	t.Run("unknown failure stays unclassified", func(t *testing.T) {
		s, fake := newTestStore(t)
		fake.failWith("GetEntity", errors.New("mystery"))
		_, err := s.GetByID(ctx, 1)
		require.Error(t, err)
		assert.False(t, store.IsNotFoundError(err))
		assert.False(t, store.IsConstraintViolation(err))
		assert.False(t, store.IsUnavailable(err))
	})
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, store.ErrNotFound},
		{http.StatusConflict, store.ErrConstraintViolation},
		{http.StatusBadRequest, store.ErrConstraintViolation},
		{http.StatusRequestEntityTooLarge, store.ErrConstraintViolation},
		{http.StatusRequestTimeout, store.ErrStoreUnavailable},
		{http.StatusPreconditionFailed, store.ErrStoreUnavailable},
		{http.StatusTooManyRequests, store.ErrStoreUnavailable},
		{http.StatusInternalServerError, store.ErrStoreUnavailable},
		{http.StatusBadGateway, store.ErrStoreUnavailable},
	}
	for _, tc := range tests {
		err := responseError(tc.status, "code")
		mapped := MapError(err)
		assert.ErrorIs(t, mapped, tc.want, "status %d", tc.status)
		assert.ErrorIs(t, mapped, err)
	}

	forbidden := responseError(http.StatusForbidden, "AuthorizationFailure")
	assert.Equal(t, forbidden, MapError(forbidden))
	assert.NoError(t, MapError(nil))

	already := store.Classified(store.ErrStoreUnavailable, responseError(http.StatusConflict, "x"))
	assert.Same(t, already, MapError(already))
}
