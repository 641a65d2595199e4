package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaTracker/tracker/models"
)

const taskJSON = `{
	"id": "t1",
	"task_type": "video",
	"status": "completed",
	"service_id": 2,
	"input_data": {"prompt": "harbor at dawn [LV:abc]"},
	"created_at": "2026-03-01T12:00:00Z",
	"updated_at": "2026-03-01T12:01:10Z",
	"processing_time_seconds": 70,
	"error_message": null,
	"video_url": "https://cdn.example.com/t1.mp4"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second,
		WithToken("secret"),
		WithTraceIDFunc(func(context.Context) string { return "trace-1" }),
	)
}

func TestClient_GetTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tasks/t1", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "trace-1", r.Header.Get("X-Trace-ID"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, taskJSON)
	})

	task, err := client.GetTask(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, models.TaskTypeVideo, task.TaskType)
	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.Equal(t, 2, task.ServiceID)
	assert.Equal(t, "harbor at dawn [LV:abc]", task.Input.Prompt)
	require.NotNil(t, task.ProcessingTimeSeconds)
	assert.Equal(t, 70.0, *task.ProcessingTimeSeconds)
	assert.Empty(t, task.ErrorMessage)
	assert.True(t, task.Media.HasMedia())
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), task.CreatedAt.UTC())
}

func TestClient_GetTask_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.GetTask(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_GetTask_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timeout", http.StatusBadGateway)
	})

	_, err := client.GetTask(context.Background(), "t1")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, "upstream timeout", statusErr.Body)
}

func TestClient_GetTask_UnknownStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"t1","task_type":"video","status":"queued"}`)
	})

	_, err := client.GetTask(context.Background(), "t1")
	assert.ErrorContains(t, err, "unknown task status")
}

func TestClient_ListTasks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks", r.URL.Path)
		io.WriteString(w, `[`+taskJSON+`,{"id":17,"task_type":"image","status":"failed","service_id":1,
			"input_data":{"prompt":"cat"},"error_message":"nsfw filter","processing_time_seconds":3}]`)
	})

	tasks, skipped, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, tasks, 2)
	assert.Equal(t, "17", tasks[1].ID)
	assert.Equal(t, models.StatusFailed, tasks[1].Status)
	assert.Equal(t, "nsfw filter", tasks[1].ErrorMessage)
}

func TestClient_ListTasksKeepsValidEntries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"id":"t1","task_type":"video","status":"processing","service_id":1},
			{"id":"t2","task_type":"audio","status":"pending","service_id":1},
			{"id":{"bad":true},"task_type":"image","status":"pending"},
			{"id":"t4","task_type":"image","status":"pending","service_id":2}
		]`)
	})

	tasks, skipped, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, "t4", tasks[1].ID)

	require.Len(t, skipped, 2)
	assert.ErrorContains(t, skipped[0], "list entry 1")
	assert.ErrorContains(t, skipped[0], "unknown task type")
	assert.ErrorContains(t, skipped[1], "list entry 2")
}

func TestClient_ListTasksRequestFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	tasks, _, err := client.ListTasks(context.Background())
	assert.Error(t, err)
	assert.Empty(t, tasks)
}

func TestClient_CreateAndUpdateFeedback(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)

		var req FeedbackRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		resp := map[string]any{"id": 9, "task_id": req.TaskID, "rating": req.Rating}
		if req.FeedbackText != nil {
			resp["feedback_text"] = *req.FeedbackText
		}
		json.NewEncoder(w).Encode(resp)
	})

	created, err := client.CreateFeedback(context.Background(), FeedbackRequest{TaskID: "42", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, "9", created.ID)
	assert.Equal(t, "42", created.TaskID)
	assert.Equal(t, 4, created.Rating)

	text := "great motion"
	updated, err := client.UpdateFeedback(context.Background(), created.ID, FeedbackRequest{TaskID: "42", Rating: 5, FeedbackText: &text})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "great motion", updated.FeedbackText)

	assert.Equal(t, []string{"POST /feedback", "PUT /feedback/9"}, methods)
}

func TestClient_GetFeedback_Absent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/42/feedback", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetFeedback(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecodeTask(t *testing.T) {
	task, err := DecodeTask([]byte(`{"id":"t2","task_type":"image","status":"processing","processing_time_seconds":5,"error_message":"stale"}`))
	require.NoError(t, err)
	assert.Nil(t, task.ProcessingTimeSeconds)
	assert.Empty(t, task.ErrorMessage)

	_, err = DecodeTask([]byte(`{"task_type":"image","status":"pending"}`))
	assert.Error(t, err)

	_, err = DecodeTask([]byte(`not json`))
	assert.Error(t, err)
}
