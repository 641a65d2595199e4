// Package backend talks to the generation API that owns tasks and feedback.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediaTracker/tracker/models"
)

var ErrNotFound = errors.New("not found")

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	traceID    func(context.Context) string
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTraceIDFunc sets where the X-Trace-ID request header is read from.
func WithTraceIDFunc(fn func(context.Context) string) Option {
	return func(c *Client) { c.traceID = fn }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTasks returns every task the backend lists. Entries that cannot be
// decoded are left out and reported in skipped, one error per entry.
func (c *Client) ListTasks(ctx context.Context) (tasks []models.GenerationTask, skipped []error, err error) {
	var entries []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &entries); err != nil {
		return nil, nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks = make([]models.GenerationTask, 0, len(entries))
	for i, entry := range entries {
		task, err := DecodeTask(entry)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("list entry %d: %w", i, err))
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, skipped, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (models.GenerationTask, error) {
	var p taskPayload
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &p); err != nil {
		return models.GenerationTask{}, fmt.Errorf("get task %s: %w", id, err)
	}
	task, err := p.toModel()
	if err != nil {
		return models.GenerationTask{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

func (c *Client) GetFeedback(ctx context.Context, taskID string) (models.FeedbackRecord, error) {
	var p feedbackPayload
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID)+"/feedback", nil, &p); err != nil {
		return models.FeedbackRecord{}, fmt.Errorf("get feedback: %w", err)
	}
	return p.toModel(), nil
}

func (c *Client) CreateFeedback(ctx context.Context, req FeedbackRequest) (models.FeedbackRecord, error) {
	var p feedbackPayload
	if err := c.do(ctx, http.MethodPost, "/feedback", req, &p); err != nil {
		return models.FeedbackRecord{}, fmt.Errorf("create feedback: %w", err)
	}
	return p.toModel(), nil
}

func (c *Client) UpdateFeedback(ctx context.Context, id string, req FeedbackRequest) (models.FeedbackRecord, error) {
	var p feedbackPayload
	if err := c.do(ctx, http.MethodPut, "/feedback/"+url.PathEscape(id), req, &p); err != nil {
		return models.FeedbackRecord{}, fmt.Errorf("update feedback: %w", err)
	}
	return p.toModel(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.traceID != nil {
		if traceID := c.traceID(ctx); traceID != "" {
			req.Header.Set("X-Trace-ID", traceID)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
