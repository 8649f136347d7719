package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ehstaff/ehstaff-backend/pkg/logger"
)

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := NewPool(2, 4, logger.Nop())

	done := make(chan struct{})
	ok := pool.Submit(func(ctx context.Context) { close(done) })
	assert.True(t, ok)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}
	pool.Close()
}

func TestPoolSubmitAfterCloseReturnsFalse(t *testing.T) {
	pool := NewPool(1, 4, logger.Nop())
	pool.Close()

	assert.False(t, pool.Submit(func(ctx context.Context) {}))
}

func TestPoolCloseWaitsForInFlightWork(t *testing.T) {
	pool := NewPool(1, 4, logger.Nop())

	started := make(chan struct{})
	var finished bool
	pool.Submit(func(ctx context.Context) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished = true
	})

	<-started
	pool.Close()
	assert.True(t, finished)
}

func TestPoolSubmitDuringCloseDoesNotPanic(t *testing.T) {
	for i := 0; i < 20; i++ {
		pool := NewPool(1, 1, logger.Nop())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				pool.Submit(func(ctx context.Context) {})
			}
		}()
		go func() {
			defer wg.Done()
			pool.Close()
		}()
		wg.Wait()

		assert.False(t, pool.Submit(func(ctx context.Context) {}))
	}
}

func TestPoolRecoversFromPanickingJob(t *testing.T) {
	pool := NewPool(1, 4, logger.Nop())

	pool.Submit(func(ctx context.Context) { panic("bad job") })

	done := make(chan struct{})
	ok := pool.Submit(func(ctx context.Context) { close(done) })
	assert.True(t, ok)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
	pool.Close()
}
