package pool

import (
	"context"
	"sync"
)

// WorkerPool bounds how many jobs run at once. Jobs waiting for a slot are
// dropped when the submit context ends; jobs that started always finish.
type WorkerPool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &WorkerPool{
		sem: make(chan struct{}, maxWorkers),
	}
}

// Submit returns immediately. If ctx ends before a slot frees up, job is
// skipped and dropped (when non-nil) runs instead.
func (p *WorkerPool) Submit(ctx context.Context, job func(), dropped func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		select {
		case p.sem <- struct{}{}:
			defer func() { <-p.sem }()
			job()
		case <-ctx.Done():
			if dropped != nil {
				dropped()
			}
		}
	}()
}

func (p *WorkerPool) Wait() {
	p.wg.Wait()
}
