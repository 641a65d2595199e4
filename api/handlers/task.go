package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"mediaTracker/api/dto"
	"mediaTracker/api/middleware"
	"mediaTracker/api/validation"
	"mediaTracker/tracker/repository"
)

type TaskService interface {
	ListTasks(filter repository.Filter) *dto.TaskListResponse
	GetTask(id string) (*dto.TaskResponse, error)
	Projects() *dto.ProjectsResponse
	GetFeedback(ctx context.Context, taskID string) (*dto.FeedbackResponse, error)
	SubmitFeedback(ctx context.Context, taskID string, req *dto.SubmitFeedbackRequest) (*dto.FeedbackResponse, error)
}

type TaskHandler struct {
	service TaskService
	logger  *zap.Logger
}

func NewTaskHandler(service TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TaskHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /tasks", h.List)
	mux.HandleFunc("GET /tasks/{id}", h.Get)
	mux.HandleFunc("GET /tasks/{id}/feedback", h.GetFeedback)
	mux.HandleFunc("POST /tasks/{id}/feedback", h.SubmitFeedback)
	mux.HandleFunc("GET /groups", h.Groups)
	mux.HandleFunc("GET /health", h.Health)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	filter, err := validation.ParseFilter(r.URL.Query())
	if err != nil {
		h.handleError(w, err.Error(), err, traceID, http.StatusBadRequest)
		return
	}

	h.respondJSON(w, http.StatusOK, h.service.ListTasks(filter))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	resp, err := h.service.GetTask(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, dto.ErrTaskNotFound) {
			h.handleError(w, "Task not found", err, traceID, http.StatusNotFound)
			return
		}
		h.handleError(w, "Failed to get task", err, traceID, http.StatusInternalServerError)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) Groups(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.Projects())
}

func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TaskHandler) handleError(w http.ResponseWriter, message string, err error, traceID string, status int) {
	if status >= http.StatusInternalServerError {
		h.logger.Error(message,
			zap.String("trace_id", traceID),
			zap.Error(err),
		)
	} else {
		h.logger.Warn(message,
			zap.String("trace_id", traceID),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		TraceID: traceID,
	})
}

func (h *TaskHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
