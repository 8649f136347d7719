package service

import (
	"context"
	"sync"

	"github.com/ehstaff/ehstaff-backend/pkg/logger"
)

// Pool runs background processing jobs on a fixed set of workers. Upload
// handling returns as soon as a job is queued; the job carries its own
// context so it outlives the originating request.
type Pool struct {
	mu       sync.Mutex
	jobs     chan func(context.Context)
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	shutdown bool
	logger   *logger.Logger
}

// NewPool starts size workers draining a queue of queueSize pending jobs.
func NewPool(size, queueSize int, log *logger.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 1 {
		queueSize = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:   make(chan func(context.Context), queueSize),
		cancel: cancel,
		logger: log,
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker(ctx)
	}
	return p
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for job := range p.jobs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error().Interface("panic", r).Msg("processing job panicked")
				}
			}()
			job(ctx)
		}()
	}
}

// Submit queues a job. Returns false when the pool is shut down or the
// queue is full; callers decide whether to run inline or fail. The send
// happens under the same lock Close takes, so a concurrent Close can
// never turn a queued send into a send on a closed channel.
func (p *Pool) Submit(job func(context.Context)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shutdown {
		return false
	}

	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Close stops accepting jobs, waits for in-flight work, then cancels the
// pool context.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return
	}
	p.shutdown = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}
