package models

import (
	"fmt"
	"time"
)

type TaskType string

const (
	TaskTypeVideo TaskType = "video"
	TaskTypeImage TaskType = "image"
)

func ParseTaskType(s string) (TaskType, error) {
	switch t := TaskType(s); t {
	case TaskTypeVideo, TaskTypeImage:
		return t, nil
	default:
		return "", fmt.Errorf("unknown task type: %q", s)
	}
}

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(s); st {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown task status: %q", s)
	}
}

// Rank orders statuses along the state machine. Completed and failed share
// the terminal rank.
func (s TaskStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	default:
		return -1
	}
}

func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s TaskStatus) IsActive() bool {
	return s == StatusPending || s == StatusProcessing
}

// CanTransitionTo reports whether a snapshot in status next may replace one
// in status s. Re-applying the same status is allowed.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	return next.Rank() > s.Rank()
}

type InputData struct {
	Prompt string
}

// MediaRefs are owned by the backend and only checked for presence.
type MediaRefs struct {
	LocalVideoURL string
	VideoURL      string
	ImageURL      string
	ThumbnailURL  string
}

func (m MediaRefs) HasMedia() bool {
	return m.LocalVideoURL != "" || m.VideoURL != "" || m.ImageURL != ""
}

type GenerationTask struct {
	ID                    string
	TaskType              TaskType
	Status                TaskStatus
	ServiceID             int
	Input                 InputData
	Media                 MediaRefs
	ProcessingTimeSeconds *float64
	ErrorMessage          string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (t GenerationTask) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required")
	}
	if _, err := ParseTaskType(string(t.TaskType)); err != nil {
		return err
	}
	if _, err := ParseTaskStatus(string(t.Status)); err != nil {
		return err
	}
	return nil
}
