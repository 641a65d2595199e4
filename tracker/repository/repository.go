package repository

import (
	"errors"

	"mediaTracker/tracker/models"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidTask      = errors.New("invalid task")
	ErrStatusRegression = errors.New("status regression rejected")
	ErrStaleSnapshot    = errors.New("stale snapshot ignored")
)

type Filter struct {
	Type   *models.TaskType
	Status *models.TaskStatus
}

func (f Filter) Matches(task models.GenerationTask) bool {
	if f.Type != nil && task.TaskType != *f.Type {
		return false
	}
	if f.Status != nil && task.Status != *f.Status {
		return false
	}
	return true
}

// Change describes one applied mutation. Previous is nil on insert.
type Change struct {
	Previous *models.GenerationTask
	Current  models.GenerationTask
}

func (c Change) StatusChanged() bool {
	return c.Previous == nil || c.Previous.Status != c.Current.Status
}

type Repository interface {
	Upsert(task models.GenerationTask) error
	Get(id string) (models.GenerationTask, error)
	List(filter Filter) []models.GenerationTask
	ActiveIDs() []string
	Subscribe(fn func(Change)) (unsubscribe func())
}
