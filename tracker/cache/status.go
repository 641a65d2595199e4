package cache

import (
	"context"
	"encoding/json"
	"time"

	"mediaTracker/tracker/models"
	"mediaTracker/tracker/repository"
)

const (
	statusKeyPrefix = "task:status:"
	statusTTL       = 10 * time.Minute
	terminalTTL     = 24 * time.Hour
)

type store interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type StatusEntry struct {
	Status       models.TaskStatus `json:"status"`
	TaskType     models.TaskType   `json:"task_type"`
	ErrorMessage string            `json:"error_message,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// StatusCache mirrors the latest known status of each task into redis so
// other dashboard processes can read it without polling the backend.
type StatusCache struct {
	cache store
}

func NewStatusCache(cache store) *StatusCache {
	return &StatusCache{cache: cache}
}

func (sc *StatusCache) Name() string { return "redis" }

func (sc *StatusCache) Handle(ctx context.Context, change repository.Change) error {
	if !change.StatusChanged() {
		return nil
	}
	return sc.Set(ctx, change.Current)
}

func (sc *StatusCache) Set(ctx context.Context, task models.GenerationTask) error {
	data, err := json.Marshal(StatusEntry{
		Status:       task.Status,
		TaskType:     task.TaskType,
		ErrorMessage: task.ErrorMessage,
		UpdatedAt:    task.UpdatedAt,
	})
	if err != nil {
		return err
	}

	ttl := statusTTL
	if task.Status.IsTerminal() {
		ttl = terminalTTL
	}
	return sc.cache.Set(ctx, statusKeyPrefix+task.ID, data, ttl)
}
