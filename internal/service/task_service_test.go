package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%03d", n)
	}
}

type flakyStore struct {
	*repository.MemoryStore
	failSet bool
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func newTestService(t *testing.T, kv repository.KeyValueStore) (*TaskService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc := NewTaskService(repository.NewTaskRepository(kv), nil,
		WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
	return svc, clock
}

func TestTaskService_SeedsFixedCatalogOnFirstAccess(t *testing.T) {
	kv := repository.NewMemoryStore()
	svc, _ := newTestService(t, kv)
	ctx := context.Background()

	tasks, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, len(model.FixedTitles))
	for i, task := range tasks {
		assert.Equal(t, model.FixedTitles[i], task.Title)
		assert.True(t, task.IsFixed)
		assert.False(t, task.IsCompleted)
		assert.False(t, task.IsSelectedForToday)
		assert.False(t, task.IsArchived)
		assert.Nil(t, task.CompletedAt)
	}

	_, found, err := kv.Get(ctx, repository.TasksKey)
	require.NoError(t, err)
	assert.True(t, found, "seed should be persisted so ids survive restarts")
}

func TestTaskService_ReloadKeepsIDs(t *testing.T) {
	kv := repository.NewMemoryStore()
	ctx := context.Background()

	first, _ := newTestService(t, kv)
	added, err := first.Add(ctx, TaskInput{Title: "Buy milk"})
	require.NoError(t, err)
	before, err := first.All(ctx)
	require.NoError(t, err)

	second := NewTaskService(repository.NewTaskRepository(kv), nil)
	after, err := second.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
	}

	got, err := second.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
}

func TestTaskService_Add(t *testing.T) {
	svc, clock := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	before, err := svc.Stats(ctx)
	require.NoError(t, err)

	task, err := svc.Add(ctx, TaskInput{Title: "  Buy milk  ", Description: "2 litres"})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 litres", task.Description)
	assert.False(t, task.IsFixed)
	assert.False(t, task.IsCompleted)
	assert.False(t, task.IsArchived)
	assert.False(t, task.IsSelectedForToday)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, clock.Now(), task.CreatedAt)

	after, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Total+1, after.Total)

	all, err := svc.Filtered(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, task.ID, all[len(all)-1].ID, "new tasks are appended")
}

func TestTaskService_AddRejectsEmptyTitle(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())

	_, err := svc.Add(context.Background(), TaskInput{Title: "   "})
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.ErrCodeInvalid))
	assert.ErrorIs(t, err, model.ErrEmptyTitle)
}

func TestTaskService_CompletionStampsCompletedAt(t *testing.T) {
	svc, clock := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	task, err := svc.Add(ctx, TaskInput{Title: "X"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	done, err := svc.ToggleCompletion(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, clock.Now(), *done.CompletedAt)
	assert.False(t, done.CompletedAt.Before(done.CreatedAt))

	clock.Advance(time.Hour)
	completed := true
	again, err := svc.Update(ctx, task.ID, model.Patch{IsCompleted: &completed})
	require.NoError(t, err)
	assert.Equal(t, *done.CompletedAt, *again.CompletedAt, "true to true must not restamp")

	view, err := svc.Filtered(ctx, model.FilterCompleted)
	require.NoError(t, err)
	require.Len(t, view, 1)
	assert.Equal(t, task.ID, view[0].ID)
}

func TestTaskService_ReopenKeepsCompletedAt(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	task, err := svc.Add(ctx, TaskInput{Title: "X"})
	require.NoError(t, err)
	done, err := svc.ToggleCompletion(ctx, task.ID)
	require.NoError(t, err)

	reopened, err := svc.ToggleCompletion(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted)
	require.NotNil(t, reopened.CompletedAt)
	assert.Equal(t, *done.CompletedAt, *reopened.CompletedAt)

	view, err := svc.Filtered(ctx, model.FilterCompleted)
	require.NoError(t, err)
	assert.Empty(t, view)
}

func TestTaskService_UpdateMergesFields(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	task, err := svc.Add(ctx, TaskInput{Title: "Old", Description: "keep"})
	require.NoError(t, err)

	title := "New"
	updated, err := svc.Update(ctx, task.ID, model.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "keep", updated.Description)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)

	empty := " "
	_, err = svc.Update(ctx, task.ID, model.Patch{Title: &empty})
	assert.ErrorIs(t, err, model.ErrEmptyTitle)

	got, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
}

func TestTaskService_ArchiveClearsToday(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	task, err := svc.Add(ctx, TaskInput{Title: "X"})
	require.NoError(t, err)
	selected, err := svc.ToggleToday(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, selected.IsSelectedForToday)

	archived, err := svc.Archive(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.False(t, archived.IsSelectedForToday)

	assert.NotContains(t, ids(t, svc, model.FilterToday), task.ID)
	assert.NotContains(t, ids(t, svc, model.FilterAll), task.ID)
	assert.Contains(t, ids(t, svc, model.FilterArchived), task.ID)

	still, err := svc.ToggleToday(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, still.IsSelectedForToday, "archived tasks cannot be selected for today")

	restored, err := svc.Unarchive(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)
	assert.False(t, restored.IsSelectedForToday)
	assert.Contains(t, ids(t, svc, model.FilterAll), task.ID)
}

func TestTaskService_ResetTodayIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	all, err := svc.All(ctx)
	require.NoError(t, err)
	_, err = svc.ToggleToday(ctx, all[0].ID)
	require.NoError(t, err)
	_, err = svc.ToggleCompletion(ctx, all[1].ID)
	require.NoError(t, err)
	_, err = svc.Archive(ctx, all[2].ID)
	require.NoError(t, err)

	require.NoError(t, svc.ResetToday(ctx))
	once, err := svc.All(ctx)
	require.NoError(t, err)
	for _, task := range once {
		assert.False(t, task.IsSelectedForToday)
		assert.False(t, task.IsCompleted)
		assert.Nil(t, task.CompletedAt)
	}
	assert.Len(t, once, len(all), "reset never removes tasks")

	require.NoError(t, svc.ResetToday(ctx))
	twice, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestTaskService_DeletePolicy(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	all, err := svc.All(ctx)
	require.NoError(t, err)

	err = svc.Delete(ctx, all[0].ID)
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.ErrCodeForbidden))
	assert.ErrorIs(t, err, model.ErrFixedTask)

	task, err := svc.Add(ctx, TaskInput{Title: "Temporary"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, task.ID))

	_, err = svc.Get(ctx, task.ID)
	assert.ErrorIs(t, err, model.ErrTaskNotFound)

	after, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(all))
}

func TestTaskService_UnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()
	completed := true

	ops := map[string]func() error{
		"update": func() error {
			_, err := svc.Update(ctx, "missing", model.Patch{IsCompleted: &completed})
			return err
		},
		"delete":    func() error { return svc.Delete(ctx, "missing") },
		"today":     func() error { _, err := svc.ToggleToday(ctx, "missing"); return err },
		"complete":  func() error { _, err := svc.ToggleCompletion(ctx, "missing"); return err },
		"archive":   func() error { _, err := svc.Archive(ctx, "missing"); return err },
		"unarchive": func() error { _, err := svc.Unarchive(ctx, "missing"); return err },
		"get":       func() error { _, err := svc.Get(ctx, "missing"); return err },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.Error(t, err)
			assert.True(t, model.IsCode(err, model.ErrCodeNotFound))
		})
	}
}

func TestTaskService_ViewsPartitionAndStats(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	all, err := svc.All(ctx)
	require.NoError(t, err)
	for i, task := range all[:6] {
		switch i % 3 {
		case 0:
			_, err = svc.Archive(ctx, task.ID)
		case 1:
			_, err = svc.ToggleToday(ctx, task.ID)
		case 2:
			_, err = svc.ToggleCompletion(ctx, task.ID)
		}
		require.NoError(t, err)
	}

	active := ids(t, svc, model.FilterAll)
	archived := ids(t, svc, model.FilterArchived)
	assert.Len(t, append(active, archived...), len(all))
	for _, id := range archived {
		assert.NotContains(t, active, id)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(active), stats.Total)
	assert.Equal(t, len(archived), stats.Archived)
	assert.Equal(t, 2, stats.Archived)
	assert.Equal(t, 2, stats.Today)
	assert.Equal(t, 2, stats.Completed)
	assert.Len(t, ids(t, svc, model.FilterToday), stats.Today)
	assert.Len(t, ids(t, svc, model.FilterCompleted), stats.Completed)
}

func TestTaskService_FixedFlagNeverChanges(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	added, err := svc.Add(ctx, TaskInput{Title: "Mine"})
	require.NoError(t, err)
	all, err := svc.All(ctx)
	require.NoError(t, err)

	for _, task := range all {
		_, err := svc.ToggleCompletion(ctx, task.ID)
		require.NoError(t, err)
		_, err = svc.Archive(ctx, task.ID)
		require.NoError(t, err)
	}
	require.NoError(t, svc.ResetToday(ctx))

	after, err := svc.All(ctx)
	require.NoError(t, err)
	for _, task := range after {
		assert.Equal(t, task.ID != added.ID, task.IsFixed, task.Title)
	}
}

func TestTaskService_CorruptStateFallsBackToSeed(t *testing.T) {
	kv := repository.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, repository.TasksKey, []byte("{not json")))

	svc, _ := newTestService(t, kv)
	tasks, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, len(model.FixedTitles))
}

func TestTaskService_FailedPersistKeepsState(t *testing.T) {
	kv := &flakyStore{MemoryStore: repository.NewMemoryStore()}
	svc, _ := newTestService(t, kv)
	ctx := context.Background()

	task, err := svc.Add(ctx, TaskInput{Title: "X"})
	require.NoError(t, err)

	kv.failSet = true
	_, err = svc.ToggleCompletion(ctx, task.ID)
	require.Error(t, err)
	_, err = svc.Add(ctx, TaskInput{Title: "Y"})
	require.Error(t, err)

	got, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.CompletedAt)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(model.FixedTitles)+1)
}

func TestTaskService_ReturnedTasksAreCopies(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	task, err := svc.Add(ctx, TaskInput{Title: "X"})
	require.NoError(t, err)
	done, err := svc.ToggleCompletion(ctx, task.ID)
	require.NoError(t, err)

	*done.CompletedAt = time.Time{}
	got, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.CompletedAt.IsZero())
}

func TestTaskService_Search(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	milk, err := svc.Add(ctx, TaskInput{Title: "Buy milk"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, TaskInput{Title: "Groceries", Description: "bread and MILK"})
	require.NoError(t, err)

	found, err := svc.Search(ctx, model.FilterAll, "milk")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = svc.Archive(ctx, milk.ID)
	require.NoError(t, err)
	found, err = svc.Search(ctx, model.FilterAll, "MILK")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = svc.Search(ctx, model.FilterArchived, "milk")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, milk.ID, found[0].ID)
}

func TestTaskService_Find(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	task, err := svc.Find(ctx, "task-001")
	require.NoError(t, err)
	assert.Equal(t, model.FixedTitles[0], task.Title)

	task, err = svc.Find(ctx, "TASK-019")
	require.NoError(t, err)
	assert.Equal(t, model.FixedTitles[18], task.Title)

	_, err = svc.Find(ctx, "task-0")
	assert.True(t, model.IsCode(err, model.ErrCodeInvalid), "ambiguous prefix")

	_, err = svc.Find(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrTaskNotFound)
}

func TestTaskService_Categories(t *testing.T) {
	svc, _ := newTestService(t, repository.NewMemoryStore())
	ctx := context.Background()

	for _, in := range []TaskInput{
		{Title: "a", Category: "Work"},
		{Title: "b", Category: "health"},
		{Title: "c", Category: "work"},
		{Title: "d"},
	} {
		_, err := svc.Add(ctx, in)
		require.NoError(t, err)
	}

	names, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"health", "Work"}, names)
}

func ids(t *testing.T, svc *TaskService, filter model.Filter) []string {
	t.Helper()
	tasks, err := svc.Filtered(context.Background(), filter)
	require.NoError(t, err)
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}
