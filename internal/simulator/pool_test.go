package simulator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

type blockingExecutor struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingExecutor) Execute(ctx context.Context, job Job) (model.CaseOutcome, error) {
	b.entered <- struct{}{}
	<-b.release
	return model.CaseOutcome{Passed: true}, nil
}

func TestPool_LimitsConcurrency(t *testing.T) {
	exec := &blockingExecutor{entered: make(chan struct{}, 4), release: make(chan struct{})}
	pool := NewPool(exec, 1, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Execute(context.Background(), Job{})
			assert.NoError(t, err)
		}()
	}

	<-exec.entered
	select {
	case <-exec.entered:
		t.Fatal("second job entered while the only slot was taken")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 1, pool.Busy())

	exec.release <- struct{}{}
	<-exec.entered
	exec.release <- struct{}{}
	wg.Wait()
	assert.Equal(t, 0, pool.Busy())
}

func TestPool_CancelledWhileWaiting(t *testing.T) {
	exec := &blockingExecutor{entered: make(chan struct{}, 1), release: make(chan struct{})}
	pool := NewPool(exec, 1, zaptest.NewLogger(t))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = pool.Execute(context.Background(), Job{})
	}()
	<-exec.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.Execute(ctx, Job{})
	require.ErrorIs(t, err, context.Canceled)

	exec.release <- struct{}{}
	<-done
}

func TestPool_SizeBoundsParallelism(t *testing.T) {
	defer goleak.VerifyNone(t)
	exec := &blockingExecutor{entered: make(chan struct{}, 3), release: make(chan struct{})}
	pool := NewPool(exec, 2, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Execute(context.Background(), Job{})
			assert.NoError(t, err)
		}()
	}

	<-exec.entered
	<-exec.entered
	select {
	case <-exec.entered:
		t.Fatal("third job entered while both slots were taken")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 2, pool.Busy())

	exec.release <- struct{}{}
	<-exec.entered
	exec.release <- struct{}{}
	exec.release <- struct{}{}
	wg.Wait()
	assert.Equal(t, 0, pool.Busy())
}

func TestNewPool_ClampsSize(t *testing.T) {
	exec := &blockingExecutor{entered: make(chan struct{}, 2), release: make(chan struct{})}
	pool := NewPool(exec, 0, zaptest.NewLogger(t))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = pool.Execute(context.Background(), Job{})
	}()
	<-exec.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := pool.Execute(ctx, Job{})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	exec.release <- struct{}{}
	<-done
}
