package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countJob struct {
	counter *atomic.Int64
	fail    bool
}

type countResult struct {
	err error
}

func (r countResult) GetError() error { return r.err }

func (j countJob) Execute(ctx context.Context) Result {
	j.counter.Add(1)
	if j.fail {
		return countResult{err: errors.New("job failed")}
	}
	return countResult{}
}

func TestPool_RunsAllJobs(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(3)
	pool.Start()

	for i := 0; i < 10; i++ {
		pool.Submit(countJob{counter: &counter})
	}
	results := pool.Wait()

	if got := counter.Load(); got != 10 {
		t.Errorf("expected 10 executions, got %d", got)
	}
	if len(results) != 10 {
		t.Errorf("expected 10 results, got %d", len(results))
	}
}

func TestPool_CollectsErrors(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(2)
	pool.Start()

	pool.Submit(countJob{counter: &counter})
	pool.Submit(countJob{counter: &counter, fail: true})
	pool.Submit(countJob{counter: &counter})

	var failed int
	for _, r := range pool.Wait() {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed result, got %d", failed)
	}
}

func TestPool_ZeroWorkersClampedToOne(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(0)
	pool.Start()

	pool.Submit(countJob{counter: &counter})
	results := pool.Wait()

	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

type slowJob struct{}

func (slowJob) Execute(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return countResult{err: ctx.Err()}
	case <-time.After(5 * time.Second):
		return countResult{}
	}
}

func TestPool_ShutdownCancelsInFlightJobs(t *testing.T) {
	pool := NewPool(1)
	pool.Start()
	pool.Submit(slowJob{})

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not cancel the in-flight job")
	}
}

func TestPool_SubmitAfterWaitIsDropped(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(2)
	pool.Start()
	pool.Submit(countJob{counter: &counter})
	results := pool.Wait()

	// The queue is closed now; a late submission must not panic
	pool.Submit(countJob{counter: &counter})

	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
	if got := counter.Load(); got != 1 {
		t.Errorf("late job must not run, got %d executions", got)
	}
}

func TestPool_SubmitAfterShutdownIsDropped(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(1)
	pool.Start()
	pool.Shutdown()

	// Must not block or panic
	pool.Submit(countJob{counter: &counter})
	if got := counter.Load(); got != 0 {
		t.Errorf("dropped job must not run, got %d executions", got)
	}
}
