package service

import (
	"context"
	"errors"
	"time"

	"mediaTracker/api/dto"
	"mediaTracker/tracker/grouping"
	"mediaTracker/tracker/models"
	"mediaTracker/tracker/progress"
	"mediaTracker/tracker/repository"
)

const timeLayout = time.RFC3339Nano

type FeedbackStore interface {
	Load(ctx context.Context, taskID string) (models.FeedbackRecord, bool, error)
	Submit(ctx context.Context, taskID string, rating int, text string) (models.FeedbackRecord, error)
}

// ViewService builds the read-only views the presentation layer renders.
// Every call evaluates against the repository's current state.
type ViewService struct {
	repo      repository.Repository
	estimator *progress.Estimator
	feedback  FeedbackStore
	now       func() time.Time
}

func NewViewService(repo repository.Repository, estimator *progress.Estimator, feedback FeedbackStore) *ViewService {
	if estimator == nil {
		estimator = progress.Default
	}
	return &ViewService{
		repo:      repo,
		estimator: estimator,
		feedback:  feedback,
		now:       time.Now,
	}
}

func (s *ViewService) WithClock(now func() time.Time) *ViewService {
	s.now = now
	return s
}

func (s *ViewService) ListTasks(filter repository.Filter) *dto.TaskListResponse {
	tasks := s.repo.List(filter)
	now := s.now()

	resp := &dto.TaskListResponse{Tasks: make([]dto.TaskResponse, 0, len(tasks))}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, s.toResponse(task, now))
	}
	resp.Count = len(resp.Tasks)
	return resp
}

func (s *ViewService) GetTask(id string) (*dto.TaskResponse, error) {
	task, err := s.repo.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, dto.ErrTaskNotFound
		}
		return nil, err
	}
	resp := s.toResponse(task, s.now())
	return &resp, nil
}

func (s *ViewService) Projects() *dto.ProjectsResponse {
	now := s.now()
	p := grouping.Partition(grouping.Group(s.repo.List(repository.Filter{})))

	return &dto.ProjectsResponse{
		Active:          s.toGroups(p.Active, now),
		Completed:       s.toGroups(p.Completed, now),
		PartiallyFailed: s.toGroups(p.PartiallyFailed, now),
	}
}

func (s *ViewService) GetFeedback(ctx context.Context, taskID string) (*dto.FeedbackResponse, error) {
	if _, err := s.GetTask(taskID); err != nil {
		return nil, err
	}

	rec, ok, err := s.feedback.Load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dto.ErrFeedbackNotFound
	}
	return toFeedbackResponse(rec), nil
}

func (s *ViewService) SubmitFeedback(ctx context.Context, taskID string, req *dto.SubmitFeedbackRequest) (*dto.FeedbackResponse, error) {
	if _, err := s.GetTask(taskID); err != nil {
		return nil, err
	}

	rec, err := s.feedback.Submit(ctx, taskID, req.Rating, req.FeedbackText)
	if err != nil {
		return nil, err
	}
	return toFeedbackResponse(rec), nil
}

func (s *ViewService) toGroups(groups []grouping.TaskGroup, now time.Time) []dto.GroupResponse {
	out := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		gr := dto.GroupResponse{
			GroupID:           g.GroupID,
			Status:            string(g.Status),
			TotalSegments:     len(g.Segments),
			CompletedSegments: g.CompletedSegments(),
			FailedSegments:    g.FailedSegments(),
			Segments:          make([]dto.TaskResponse, 0, len(g.Segments)),
		}
		for _, seg := range g.Segments {
			gr.Segments = append(gr.Segments, s.toResponse(seg, now))
		}
		out = append(out, gr)
	}
	return out
}

func (s *ViewService) toResponse(task models.GenerationTask, now time.Time) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:                    task.ID,
		TaskType:              string(task.TaskType),
		Status:                string(task.Status),
		ServiceID:             task.ServiceID,
		Prompt:                task.Input.Prompt,
		Progress:              s.estimator.Estimate(task, now),
		ShowProgress:          progress.ShowsBar(task.Status),
		ErrorMessage:          task.ErrorMessage,
		ProcessingTimeSeconds: task.ProcessingTimeSeconds,
		CreatedAt:             task.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:             task.UpdatedAt.UTC().Format(timeLayout),
	}
	if groupID, ok := grouping.GroupIDOf(task); ok {
		resp.GroupID = groupID
	}
	if task.Media.HasMedia() || task.Media.ThumbnailURL != "" {
		resp.Media = &dto.MediaResponse{
			LocalVideoURL: task.Media.LocalVideoURL,
			VideoURL:      task.Media.VideoURL,
			ImageURL:      task.Media.ImageURL,
			ThumbnailURL:  task.Media.ThumbnailURL,
		}
	}
	return resp
}

func toFeedbackResponse(rec models.FeedbackRecord) *dto.FeedbackResponse {
	resp := &dto.FeedbackResponse{
		ID:           rec.ID,
		TaskID:       rec.TaskID,
		Rating:       rec.Rating,
		FeedbackText: rec.FeedbackText,
	}
	if !rec.CreatedAt.IsZero() {
		resp.CreatedAt = rec.CreatedAt.UTC().Format(timeLayout)
	}
	if !rec.UpdatedAt.IsZero() {
		resp.UpdatedAt = rec.UpdatedAt.UTC().Format(timeLayout)
	}
	return resp
}
