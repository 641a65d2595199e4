package sink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mediaTracker/tracker/models"
	"mediaTracker/tracker/repository"
)

type recordingSink struct {
	name string
	err  error

	mu      sync.Mutex
	changes []repository.Change
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Handle(ctx context.Context, change repository.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, change)
	return s.err
}

func (s *recordingSink) statuses() []models.TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TaskStatus
	for _, c := range s.changes {
		out = append(out, c.Current.Status)
	}
	return out
}

func task(status models.TaskStatus) models.GenerationTask {
	now := time.Now()
	return models.GenerationTask{ID: "t1", TaskType: models.TaskTypeVideo, Status: status, CreatedAt: now, UpdatedAt: now}
}

func TestDispatcher_DeliversInOrderToEverySink(t *testing.T) {
	logger := zaptest.NewLogger(t)
	repo := repository.NewMemoryRepository(logger)

	failing := &recordingSink{name: "failing", err: errors.New("redis down")}
	ok := &recordingSink{name: "ok"}
	d := NewDispatcher(8, logger, failing, ok)
	d.Attach(repo)

	done := make(chan struct{})
	go func() {
		d.Run(context.Background())
		close(done)
	}()

	require.NoError(t, repo.Upsert(task(models.StatusPending)))
	require.NoError(t, repo.Upsert(task(models.StatusProcessing)))
	require.NoError(t, repo.Upsert(task(models.StatusCompleted)))

	d.Close()
	<-done

	want := []models.TaskStatus{models.StatusPending, models.StatusProcessing, models.StatusCompleted}
	assert.Equal(t, want, ok.statuses())
	assert.Equal(t, want, failing.statuses())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	s := &recordingSink{name: "s"}
	d := NewDispatcher(1, zaptest.NewLogger(t), s)

	d.Enqueue(repository.Change{Current: task(models.StatusPending)})
	d.Enqueue(repository.Change{Current: task(models.StatusProcessing)})
	d.Close()
	d.Enqueue(repository.Change{Current: task(models.StatusCompleted)})

	d.Run(context.Background())

	assert.Equal(t, []models.TaskStatus{models.StatusPending}, s.statuses())
}

func TestDispatcher_SkipsRefreshesWithoutStatusChange(t *testing.T) {
	s := &recordingSink{name: "s"}
	d := NewDispatcher(2, zaptest.NewLogger(t), s)

	a := task(models.StatusProcessing)
	b := task(models.StatusProcessing)
	b.ID = "t2"
	d.Enqueue(repository.Change{Previous: &a, Current: a})
	d.Enqueue(repository.Change{Previous: &b, Current: b})
	d.Enqueue(repository.Change{Previous: &b, Current: b})

	done := task(models.StatusCompleted)
	d.Enqueue(repository.Change{Previous: &a, Current: done})
	d.Close()

	d.Run(context.Background())

	assert.Equal(t, []models.TaskStatus{models.StatusCompleted}, s.statuses())
}

func TestDispatcher_StopsOnContext(t *testing.T) {
	d := NewDispatcher(0, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.Run(ctx)
	d.Close()
	d.Close()
}
