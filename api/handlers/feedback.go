package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"mediaTracker/api/dto"
	"mediaTracker/api/middleware"
	"mediaTracker/api/validation"
	"mediaTracker/tracker/feedback"
)

const maxFeedbackBody = 64 << 10

func (h *TaskHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	resp, err := h.service.GetFeedback(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrTaskNotFound):
			h.handleError(w, "Task not found", err, traceID, http.StatusNotFound)
		case errors.Is(err, dto.ErrFeedbackNotFound):
			h.handleError(w, "Feedback not found", err, traceID, http.StatusNotFound)
		default:
			h.handleError(w, "Failed to load feedback", err, traceID, http.StatusBadGateway)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())
	taskID := r.PathValue("id")

	var req dto.SubmitFeedbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFeedbackBody)).Decode(&req); err != nil {
		h.handleError(w, validation.ErrInvalidBody.Error(), err, traceID, http.StatusBadRequest)
		return
	}

	resp, err := h.service.SubmitFeedback(r.Context(), taskID, &req)
	if err != nil {
		var verr *feedback.ValidationError
		switch {
		case errors.As(err, &verr):
			h.handleError(w, verr.Err.Error(), err, traceID, http.StatusBadRequest)
		case errors.Is(err, dto.ErrTaskNotFound):
			h.handleError(w, "Task not found", err, traceID, http.StatusNotFound)
		default:
			h.handleError(w, "Failed to submit feedback", err, traceID, http.StatusBadGateway)
		}
		return
	}

	h.logger.Info("Feedback submitted",
		zap.String("trace_id", traceID),
		zap.String("task_id", taskID),
		zap.Int("rating", resp.Rating),
	)

	h.respondJSON(w, http.StatusOK, resp)
}
