package dto

import "errors"

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrFeedbackNotFound = errors.New("feedback not found")
)

type MediaResponse struct {
	LocalVideoURL string `json:"local_video_url,omitempty"`
	VideoURL      string `json:"video_url,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
}

type TaskResponse struct {
	ID                    string         `json:"id"`
	TaskType              string         `json:"task_type"`
	Status                string         `json:"status"`
	ServiceID             int            `json:"service_id"`
	Prompt                string         `json:"prompt"`
	GroupID               string         `json:"group_id,omitempty"`
	Progress              int            `json:"progress"`
	ShowProgress          bool           `json:"show_progress"`
	ErrorMessage          string         `json:"error_message,omitempty"`
	ProcessingTimeSeconds *float64       `json:"processing_time_seconds,omitempty"`
	Media                 *MediaResponse `json:"media,omitempty"`
	CreatedAt             string         `json:"created_at"`
	UpdatedAt             string         `json:"updated_at"`
}

type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

type GroupResponse struct {
	GroupID           string         `json:"group_id"`
	Status            string         `json:"status"`
	TotalSegments     int            `json:"total_segments"`
	CompletedSegments int            `json:"completed_segments"`
	FailedSegments    int            `json:"failed_segments"`
	Segments          []TaskResponse `json:"segments"`
}

type ProjectsResponse struct {
	Active          []GroupResponse `json:"active"`
	Completed       []GroupResponse `json:"completed"`
	PartiallyFailed []GroupResponse `json:"partially_failed"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}
