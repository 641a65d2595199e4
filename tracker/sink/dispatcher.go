// Package sink fans repository changes out to external systems without
// holding up the repository's writers.
package sink

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mediaTracker/tracker/metrics"
	"mediaTracker/tracker/repository"
)

type Sink interface {
	Name() string
	Handle(ctx context.Context, change repository.Change) error
}

const handleTimeout = 5 * time.Second

type Dispatcher struct {
	sinks  []Sink
	ch     chan repository.Change
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(buffer int, logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		sinks:  sinks,
		ch:     make(chan repository.Change, buffer),
		logger: logger,
	}
}

func (d *Dispatcher) Len() int { return len(d.sinks) }

// Enqueue never blocks. Refreshes that leave the status unchanged are not
// queued. When the buffer is full the change is dropped.
func (d *Dispatcher) Enqueue(change repository.Change) {
	if !change.StatusChanged() {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	select {
	case d.ch <- change:
	default:
		metrics.RecordSinkDrop()
		d.logger.Warn("Sink buffer full, dropping change",
			zap.String("task_id", change.Current.ID),
			zap.String("status", string(change.Current.Status)),
		)
	}
}

// Attach subscribes the dispatcher to repo and returns the unsubscribe func.
func (d *Dispatcher) Attach(repo repository.Repository) func() {
	return repo.Subscribe(d.Enqueue)
}

// Run delivers queued changes until Close has been called and the buffer is
// drained, or ctx ends.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-d.ch:
			if !ok {
				return
			}
			d.deliver(ctx, change)
		}
	}
}

func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.ch)
}

func (d *Dispatcher) deliver(ctx context.Context, change repository.Change) {
	for _, s := range d.sinks {
		hctx, cancel := context.WithTimeout(ctx, handleTimeout)
		err := s.Handle(hctx, change)
		cancel()
		if err != nil {
			d.logger.Error("Sink failed",
				zap.String("sink", s.Name()),
				zap.String("task_id", change.Current.ID),
				zap.Error(err),
			)
		}
	}
}
