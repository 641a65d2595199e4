// Package scheduler drives status polling for every task that has not reached
// a terminal status.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"mediaTracker/tracker/metrics"
	"mediaTracker/tracker/models"
	"mediaTracker/tracker/pool"
	"mediaTracker/tracker/repository"
)

var ErrAlreadyRunning = errors.New("poller already running")

type Fetcher interface {
	GetTask(ctx context.Context, id string) (models.GenerationTask, error)
}

type Config struct {
	Interval       time.Duration
	MaxConcurrency int
}

// Poller refreshes the active set once per tick. It keeps no record of which
// tasks still need polling: every tick asks the repository for its active ids.
type Poller struct {
	repo    repository.Repository
	fetcher Fetcher
	pool    *pool.WorkerPool
	cfg     Config
	logger  *zap.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	inFlight map[string]struct{}
}

func NewPoller(repo repository.Repository, fetcher Fetcher, cfg Config, logger *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 16
	}
	return &Poller{
		repo:     repo,
		fetcher:  fetcher,
		pool:     pool.NewWorkerPool(cfg.MaxConcurrency),
		cfg:      cfg,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Start begins ticking in the background. The loop ends when ctx is done or
// Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(runCtx, p.done)

	p.logger.Info("Poller started", zap.Duration("interval", p.cfg.Interval))
	return nil
}

// Stop halts future ticks. Fetches already running are left to finish and
// their results are still applied; use Wait to block until they have.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	p.logger.Info("Poller stopped")
}

func (p *Poller) Wait() {
	p.pool.Wait()
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick issues one fetch per active task without waiting for any of them.
// Tasks whose previous fetch has not returned are skipped this round.
func (p *Poller) Tick(ctx context.Context) {
	ids := p.repo.ActiveIDs()
	metrics.RecordPollRound(len(ids))

	fetchCtx := context.WithoutCancel(ctx)

	for _, id := range ids {
		if !p.claim(id) {
			metrics.RecordFetch(metrics.FetchSkipped)
			continue
		}
		p.pool.Submit(ctx, func() {
			defer p.release(id)
			p.refresh(fetchCtx, id)
		}, func() { p.release(id) })
	}
}

func (p *Poller) claim(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *Poller) release(id string) {
	p.mu.Lock()
	delete(p.inFlight, id)
	p.mu.Unlock()
}

func (p *Poller) refresh(ctx context.Context, id string) {
	task, err := p.fetcher.GetTask(ctx, id)
	if err != nil {
		metrics.RecordFetch(metrics.FetchError)
		p.logger.Warn("Status fetch failed, will retry",
			zap.String("task_id", id),
			zap.Error(err),
		)
		return
	}

	if task.ID != id {
		metrics.RecordFetch(metrics.FetchError)
		p.logger.Error("Status fetch returned a different task",
			zap.String("task_id", id),
			zap.String("returned_id", task.ID),
		)
		return
	}

	if err := p.repo.Upsert(task); err != nil {
		if errors.Is(err, repository.ErrStatusRegression) || errors.Is(err, repository.ErrStaleSnapshot) {
			metrics.RecordFetch(metrics.FetchRegression)
			return
		}
		metrics.RecordFetch(metrics.FetchError)
		p.logger.Error("Failed to apply fetched status",
			zap.String("task_id", id),
			zap.Error(err),
		)
		return
	}

	metrics.RecordFetch(metrics.FetchOK)
}
