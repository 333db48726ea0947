package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	Category    string
}

// Option customises a TaskService.
type Option func(*TaskService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(next func() string) Option {
	return func(s *TaskService) { s.newID = next }
}

// TaskService owns the task collection. The collection is loaded on first
// use and written back wholesale after every mutation.
type TaskService struct {
	repo   *repository.TaskRepository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	mu     sync.Mutex
	loaded bool
	tasks  []model.Task
}

func NewTaskService(repo *repository.TaskRepository, logger *zap.Logger, opts ...Option) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TaskService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a new user task.
func (s *TaskService) Add(ctx context.Context, input TaskInput) (model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return model.Task{}, model.ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return model.Task{}, err
	}

	task := model.Task{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		CreatedAt:   s.now(),
	}

	next := make([]model.Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	next = append(next, task)
	if err := s.commit(ctx, next); err != nil {
		return model.Task{}, err
	}

	s.logger.Info("task created", zap.String("id", task.ID), zap.String("title", task.Title))
	return task.Clone(), nil
}

// Update merges patch into the task with the given id. Completing a task
// that was not completed stamps CompletedAt with the current time.
func (s *TaskService) Update(ctx context.Context, id string, patch model.Patch) (model.Task, error) {
	return s.mutate(ctx, id, "update", func(task *model.Task, now time.Time) error {
		return applyPatch(task, patch, now)
	})
}

// Delete removes a user task. Fixed tasks are refused.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("delete %s: %w", id, model.ErrTaskNotFound)
	}
	if s.tasks[idx].IsFixed {
		return fmt.Errorf("delete %s: %w", id, model.ErrFixedTask)
	}

	next := make([]model.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:idx]...)
	next = append(next, s.tasks[idx+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.logger.Info("task deleted", zap.String("id", id))
	return nil
}

// ToggleToday flips the today selection.
func (s *TaskService) ToggleToday(ctx context.Context, id string) (model.Task, error) {
	return s.mutate(ctx, id, "toggle today", func(task *model.Task, now time.Time) error {
		selected := !task.IsSelectedForToday
		return applyPatch(task, model.Patch{IsSelectedForToday: &selected}, now)
	})
}

// ToggleCompletion flips the completion flag. Reopening keeps CompletedAt;
// only ResetToday clears it.
func (s *TaskService) ToggleCompletion(ctx context.Context, id string) (model.Task, error) {
	return s.mutate(ctx, id, "toggle completion", func(task *model.Task, now time.Time) error {
		completed := !task.IsCompleted
		return applyPatch(task, model.Patch{IsCompleted: &completed}, now)
	})
}

// Archive hides the task from every view except archived and drops it from today.
func (s *TaskService) Archive(ctx context.Context, id string) (model.Task, error) {
	archived, selected := true, false
	return s.Update(ctx, id, model.Patch{IsArchived: &archived, IsSelectedForToday: &selected})
}

// Unarchive restores the task. The today selection stays cleared.
func (s *TaskService) Unarchive(ctx context.Context, id string) (model.Task, error) {
	archived := false
	return s.Update(ctx, id, model.Patch{IsArchived: &archived})
}

// ResetToday clears the today selection and completion state of every task.
func (s *TaskService) ResetToday(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	next := make([]model.Task, len(s.tasks))
	for i, task := range s.tasks {
		task.IsSelectedForToday = false
		task.IsCompleted = false
		task.CompletedAt = nil
		next[i] = task
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.logger.Info("day reset", zap.Int("tasks", len(next)))
	return nil
}

// Filtered returns the tasks visible in the given view, in insertion order.
func (s *TaskService) Filtered(ctx context.Context, filter model.Filter) ([]model.Task, error) {
	return s.Search(ctx, filter, "")
}

// Search narrows a view to tasks whose title or description contains term.
func (s *TaskService) Search(ctx context.Context, filter model.Filter, term string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	result := make([]model.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if filter.Visible(task) && task.Matches(term) {
			result = append(result, task.Clone())
		}
	}
	return result, nil
}

// Stats counts the tasks of each view.
func (s *TaskService) Stats(ctx context.Context) (model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return model.Stats{}, err
	}

	var stats model.Stats
	for _, task := range s.tasks {
		if task.IsArchived {
			stats.Archived++
			continue
		}
		stats.Total++
		if task.IsCompleted {
			stats.Completed++
		}
		if task.IsSelectedForToday {
			stats.Today++
		}
	}
	return stats, nil
}

// All returns a copy of the whole collection.
func (s *TaskService) All(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	result := make([]model.Task, len(s.tasks))
	for i, task := range s.tasks {
		result[i] = task.Clone()
	}
	return result, nil
}

// Get returns the task with the given id.
func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return model.Task{}, err
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("get %s: %w", id, model.ErrTaskNotFound)
	}
	return s.tasks[idx].Clone(), nil
}

// Find resolves a full id or an unambiguous id prefix.
func (s *TaskService) Find(ctx context.Context, ref string) (model.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return model.Task{}, model.NewError(model.ErrCodeInvalid, "task id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return model.Task{}, err
	}

	var matches []model.Task
	for _, task := range s.tasks {
		id := strings.ToLower(task.ID)
		if id == ref {
			return task.Clone(), nil
		}
		if strings.HasPrefix(id, ref) {
			matches = append(matches, task)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("find %s: %w", ref, model.ErrTaskNotFound)
	case 1:
		return matches[0].Clone(), nil
	default:
		return model.Task{}, model.NewError(model.ErrCodeInvalid, fmt.Sprintf("id prefix %q matches %d tasks", ref, len(matches)))
	}
}

// Categories lists the distinct categories in use, sorted by name.
func (s *TaskService) Categories(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var names []string
	for _, task := range s.tasks {
		name := strings.TrimSpace(task.Category)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}

func (s *TaskService) mutate(ctx context.Context, id, op string, fn func(task *model.Task, now time.Time) error) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return model.Task{}, err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("%s %s: %w", op, id, model.ErrTaskNotFound)
	}

	next := make([]model.Task, len(s.tasks))
	copy(next, s.tasks)
	task := next[idx].Clone()
	if err := fn(&task, s.now()); err != nil {
		return model.Task{}, err
	}
	next[idx] = task

	if err := s.commit(ctx, next); err != nil {
		return model.Task{}, err
	}

	s.logger.Debug("task updated", zap.String("op", op), zap.String("id", id))
	return task.Clone(), nil
}

// ensureLoaded must be called with mu held.
func (s *TaskService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	tasks, found, err := s.repo.Load(ctx)
	switch {
	case err == nil && found:
		s.tasks = tasks
	case err != nil && !errors.Is(err, repository.ErrCorrupt):
		return err
	default:
		if err != nil {
			s.logger.Warn("stored tasks unreadable, reseeding", zap.Error(err))
		}
		seeded := s.seed()
		if err := s.repo.Save(ctx, seeded); err != nil {
			return err
		}
		s.tasks = seeded
		s.logger.Info("task catalog seeded", zap.Int("tasks", len(seeded)))
	}

	s.loaded = true
	return nil
}

func (s *TaskService) seed() []model.Task {
	now := s.now()
	tasks := make([]model.Task, 0, len(model.FixedTitles))
	for _, title := range model.FixedTitles {
		tasks = append(tasks, model.Task{
			ID:        s.newID(),
			Title:     title,
			IsFixed:   true,
			CreatedAt: now,
		})
	}
	return tasks
}

// commit persists next and only then adopts it as the current state.
func (s *TaskService) commit(ctx context.Context, next []model.Task) error {
	if err := s.repo.Save(ctx, next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

func (s *TaskService) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func applyPatch(task *model.Task, patch model.Patch, now time.Time) error {
	wasCompleted := task.IsCompleted

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return model.ErrEmptyTitle
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		task.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.IsCompleted != nil {
		task.IsCompleted = *patch.IsCompleted
	}
	if patch.IsSelectedForToday != nil {
		task.IsSelectedForToday = *patch.IsSelectedForToday
	}
	if patch.IsArchived != nil {
		task.IsArchived = *patch.IsArchived
	}

	if task.IsArchived {
		task.IsSelectedForToday = false
	}
	if task.IsCompleted && !wasCompleted {
		at := now
		task.CompletedAt = &at
	}
	return nil
}
