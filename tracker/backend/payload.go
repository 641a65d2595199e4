package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"mediaTracker/tracker/models"
)

// flexID accepts ids encoded either as JSON strings or numbers.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = flexID(n.String())
	return nil
}

type inputPayload struct {
	Prompt string `json:"prompt"`
}

type taskPayload struct {
	ID                    flexID       `json:"id"`
	TaskType              string       `json:"task_type"`
	Status                string       `json:"status"`
	ServiceID             int          `json:"service_id"`
	InputData             inputPayload `json:"input_data"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
	ProcessingTimeSeconds *float64     `json:"processing_time_seconds"`
	ErrorMessage          *string      `json:"error_message"`
	LocalVideoURL         string       `json:"local_video_url"`
	VideoURL              string       `json:"video_url"`
	ImageURL              string       `json:"image_url"`
	ThumbnailURL          string       `json:"thumbnail_url"`
}

func (p taskPayload) toModel() (models.GenerationTask, error) {
	typ, err := models.ParseTaskType(p.TaskType)
	if err != nil {
		return models.GenerationTask{}, err
	}
	status, err := models.ParseTaskStatus(p.Status)
	if err != nil {
		return models.GenerationTask{}, err
	}
	if p.ID == "" {
		return models.GenerationTask{}, fmt.Errorf("task id is missing")
	}

	task := models.GenerationTask{
		ID:        string(p.ID),
		TaskType:  typ,
		Status:    status,
		ServiceID: p.ServiceID,
		Input:     models.InputData{Prompt: p.InputData.Prompt},
		Media: models.MediaRefs{
			LocalVideoURL: p.LocalVideoURL,
			VideoURL:      p.VideoURL,
			ImageURL:      p.ImageURL,
			ThumbnailURL:  p.ThumbnailURL,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if status.IsTerminal() {
		task.ProcessingTimeSeconds = p.ProcessingTimeSeconds
	}
	if status == models.StatusFailed && p.ErrorMessage != nil {
		task.ErrorMessage = *p.ErrorMessage
	}
	return task, nil
}

// DecodeTask parses one task snapshot as the backend serializes it.
func DecodeTask(data []byte) (models.GenerationTask, error) {
	var p taskPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return models.GenerationTask{}, fmt.Errorf("decode task: %w", err)
	}
	task, err := p.toModel()
	if err != nil {
		return models.GenerationTask{}, fmt.Errorf("decode task: %w", err)
	}
	return task, nil
}

type feedbackPayload struct {
	ID           flexID    `json:"id"`
	TaskID       flexID    `json:"task_id"`
	Rating       int       `json:"rating"`
	FeedbackText *string   `json:"feedback_text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p feedbackPayload) toModel() models.FeedbackRecord {
	rec := models.FeedbackRecord{
		ID:        string(p.ID),
		TaskID:    string(p.TaskID),
		Rating:    p.Rating,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.FeedbackText != nil {
		rec.FeedbackText = *p.FeedbackText
	}
	return rec
}

type FeedbackRequest struct {
	TaskID       string  `json:"task_id"`
	Rating       int     `json:"rating"`
	FeedbackText *string `json:"feedback_text,omitempty"`
}
