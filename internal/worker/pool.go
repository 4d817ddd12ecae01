// Package worker provides the concurrency primitives behind batch
// moderation: a bounded job pool and per-domain rate limiting for
// outbound evidence fetches.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of batch work
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job
type Result interface {
	GetError() error
}

// Pool runs jobs across a fixed number of workers. Submit all jobs,
// then call Wait exactly once to drain results.
type Pool struct {
	size    int
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once

	mu       sync.Mutex
	draining bool
}

// NewPool creates a pool with the given worker count
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		size:    size,
		jobs:    make(chan Job, size*2),
		results: make(chan Result, size*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			select {
			case p.results <- job.Execute(p.ctx):
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. After Wait or Shutdown, submissions are dropped.
func (p *Pool) Submit(job Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.draining {
		return
	}
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, waits for the workers to finish, and returns
// every result
func (p *Pool) Wait() []Result {
	p.mu.Lock()
	p.draining = true
	close(p.jobs)
	p.mu.Unlock()
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []Result
	for r := range p.results {
		results = append(results, r)
	}
	return results
}

// Shutdown aborts in-flight work
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.once.Do(func() { close(p.results) })
}
