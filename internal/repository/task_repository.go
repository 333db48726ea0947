package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"taskflow/internal/model"
)

// TaskRepository reads and writes the whole task collection under one key.
type TaskRepository struct {
	kv  KeyValueStore
	key string
}

func NewTaskRepository(kv KeyValueStore) *TaskRepository {
	return &TaskRepository{kv: kv, key: TasksKey}
}

// Load returns the stored collection. found is false when nothing was stored yet.
// Values that do not decode into a valid collection yield an error wrapping ErrCorrupt.
func (r *TaskRepository) Load(ctx context.Context) (tasks []model.Task, found bool, err error) {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, false, fmt.Errorf("load tasks: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if tasks == nil {
		return nil, true, fmt.Errorf("%w: null collection", ErrCorrupt)
	}

	seen := make(map[string]struct{}, len(tasks))
	for i, task := range tasks {
		if task.ID == "" || task.Title == "" {
			return nil, true, fmt.Errorf("%w: task %d has no id or title", ErrCorrupt, i)
		}
		if _, dup := seen[task.ID]; dup {
			return nil, true, fmt.Errorf("%w: duplicate id %s", ErrCorrupt, task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	return tasks, true, nil
}

// Save replaces the stored collection.
func (r *TaskRepository) Save(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, payload); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
