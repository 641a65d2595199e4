// Package feedback caches the current user's rating of each task and decides
// on the client whether a submission creates or updates the backend record.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"mediaTracker/tracker/backend"
	"mediaTracker/tracker/metrics"
	"mediaTracker/tracker/models"
)

type Backend interface {
	GetFeedback(ctx context.Context, taskID string) (models.FeedbackRecord, error)
	CreateFeedback(ctx context.Context, req backend.FeedbackRequest) (models.FeedbackRecord, error)
	UpdateFeedback(ctx context.Context, id string, req backend.FeedbackRequest) (models.FeedbackRecord, error)
}

type Cache struct {
	backend Backend
	logger  *zap.Logger

	mu      sync.RWMutex
	records map[string]models.FeedbackRecord
	loaded  map[string]bool

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewCache(b Backend, logger *zap.Logger) *Cache {
	return &Cache{
		backend: b,
		logger:  logger,
		records: make(map[string]models.FeedbackRecord),
		loaded:  make(map[string]bool),
		locks:   make(map[string]*sync.Mutex),
	}
}

func (c *Cache) Get(taskID string) (models.FeedbackRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[taskID]
	return rec, ok
}

// Load returns the cached record, fetching it from the backend the first time
// a task is asked for. A missing record is remembered as absent.
func (c *Cache) Load(ctx context.Context, taskID string) (models.FeedbackRecord, bool, error) {
	c.mu.RLock()
	rec, ok := c.records[taskID]
	loaded := c.loaded[taskID]
	c.mu.RUnlock()
	if ok || loaded {
		return rec, ok, nil
	}

	lock := c.lockFor(taskID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	rec, ok = c.records[taskID]
	loaded = c.loaded[taskID]
	c.mu.RUnlock()
	if ok || loaded {
		return rec, ok, nil
	}

	rec, err := c.backend.GetFeedback(ctx, taskID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.mu.Lock()
			c.loaded[taskID] = true
			c.mu.Unlock()
			return models.FeedbackRecord{}, false, nil
		}
		return models.FeedbackRecord{}, false, fmt.Errorf("load feedback for task %s: %w", taskID, err)
	}

	rec.TaskID = taskID
	c.store(rec)
	return rec, true, nil
}

// Submit validates input, then issues exactly one create or update. The cache
// only changes when the backend accepted the submission.
func (c *Cache) Submit(ctx context.Context, taskID string, rating int, text string) (models.FeedbackRecord, error) {
	if err := Validate(taskID, rating, text); err != nil {
		return models.FeedbackRecord{}, err
	}

	lock := c.lockFor(taskID)
	lock.Lock()
	defer lock.Unlock()

	existing, ok := c.Get(taskID)
	update := ok && existing.Persisted()

	req := backend.FeedbackRequest{TaskID: taskID, Rating: rating}
	// an update always carries the text so it can clear a saved comment
	if text != "" || update {
		req.FeedbackText = &text
	}

	var (
		rec       models.FeedbackRecord
		err       error
		operation string
	)
	if update {
		operation = "update"
		rec, err = c.backend.UpdateFeedback(ctx, existing.ID, req)
	} else {
		operation = "create"
		rec, err = c.backend.CreateFeedback(ctx, req)
	}
	metrics.RecordFeedback(operation, err)

	if err != nil {
		c.logger.Warn("Feedback submission rejected",
			zap.String("task_id", taskID),
			zap.String("operation", operation),
			zap.Error(err),
		)
		return models.FeedbackRecord{}, fmt.Errorf("%s feedback for task %s: %w", operation, taskID, err)
	}

	rec.TaskID = taskID
	if rec.ID == "" && ok {
		rec.ID = existing.ID
	}
	c.store(rec)

	c.logger.Info("Feedback saved",
		zap.String("task_id", taskID),
		zap.String("feedback_id", rec.ID),
		zap.String("operation", operation),
	)
	return rec, nil
}

func Validate(taskID string, rating int, text string) error {
	switch {
	case taskID == "":
		return &ValidationError{Err: ErrTaskIDRequired}
	case rating == 0:
		return &ValidationError{Err: ErrRatingRequired}
	case rating < models.MinRating || rating > models.MaxRating:
		return &ValidationError{Err: ErrRatingOutOfRange}
	case utf8.RuneCountInString(text) > models.MaxFeedbackLength:
		return &ValidationError{Err: ErrFeedbackTooLong}
	}
	return nil
}

func (c *Cache) store(rec models.FeedbackRecord) {
	c.mu.Lock()
	c.records[rec.TaskID] = rec
	c.loaded[rec.TaskID] = true
	c.mu.Unlock()
}

func (c *Cache) lockFor(taskID string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	l, ok := c.locks[taskID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[taskID] = l
	}
	return l
}
