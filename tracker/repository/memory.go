package repository

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mediaTracker/tracker/metrics"
	"mediaTracker/tracker/models"
)

// MemoryRepository is the authoritative in-memory task collection.
//
// writeMu serializes mutations together with their notifications so that
// subscribers observe changes in the order they were applied. Subscribers may
// read from the repository but must not call Upsert.
type MemoryRepository struct {
	mu      sync.RWMutex
	writeMu sync.Mutex

	tasks map[string]models.GenerationTask
	order []string
	// ids whose UpdatedAt came from the clock rather than a snapshot
	stamped map[string]struct{}

	subs   map[int]func(Change)
	nextID int

	now    func() time.Time
	logger *zap.Logger
}

func NewMemoryRepository(logger *zap.Logger) *MemoryRepository {
	return &MemoryRepository{
		tasks:   make(map[string]models.GenerationTask),
		stamped: make(map[string]struct{}),
		subs:    make(map[int]func(Change)),
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock replaces the clock used to stamp UpdatedAt on transitions.
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.now = now
	return r
}

func (r *MemoryRepository) Upsert(task models.GenerationTask) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	prev, exists := r.tasks[task.ID]
	if exists {
		if !prev.Status.CanTransitionTo(task.Status) {
			r.mu.Unlock()
			r.logger.Debug("Rejected status regression",
				zap.String("task_id", task.ID),
				zap.String("from", string(prev.Status)),
				zap.String("to", string(task.Status)),
			)
			return ErrStatusRegression
		}

		_, stamped := r.stamped[task.ID]
		if task.Status == prev.Status && task.UpdatedAt.Before(prev.UpdatedAt) {
			if !stamped && !task.UpdatedAt.IsZero() {
				r.mu.Unlock()
				r.logger.Debug("Ignored stale snapshot",
					zap.String("task_id", task.ID),
					zap.Time("stored", prev.UpdatedAt),
					zap.Time("received", task.UpdatedAt),
				)
				return ErrStaleSnapshot
			}
			// a locally stamped time is later than anything the backend reported
			task.UpdatedAt = prev.UpdatedAt
		}

		task.CreatedAt = prev.CreatedAt
		task.TaskType = prev.TaskType
		switch {
		case task.Status != prev.Status && !task.UpdatedAt.After(prev.UpdatedAt):
			task.UpdatedAt = r.now()
			r.stamped[task.ID] = struct{}{}
		case task.UpdatedAt.After(prev.UpdatedAt):
			delete(r.stamped, task.ID)
		}
	} else {
		r.order = append(r.order, task.ID)
	}

	if task.UpdatedAt.Before(task.CreatedAt) {
		task.UpdatedAt = task.CreatedAt
	}

	r.tasks[task.ID] = task
	subs := make([]func(Change), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	change := Change{Current: task}
	if exists {
		change.Previous = &prev
	}

	if change.StatusChanged() {
		r.logger.Info("Task status applied",
			zap.String("task_id", task.ID),
			zap.String("status", string(task.Status)),
		)
		metrics.RecordTransition(string(task.TaskType), string(task.Status))
	}

	for _, fn := range subs {
		fn(change)
	}

	return nil
}

func (r *MemoryRepository) Get(id string) (models.GenerationTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return models.GenerationTask{}, ErrTaskNotFound
	}
	return task, nil
}

func (r *MemoryRepository) List(filter Filter) []models.GenerationTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]models.GenerationTask, 0, len(r.order))
	for _, id := range r.order {
		task := r.tasks[id]
		if filter.Matches(task) {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

func (r *MemoryRepository) ActiveIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, id := range r.order {
		if r.tasks[id].Status.IsActive() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func (r *MemoryRepository) Subscribe(fn func(Change)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}
