package simulator

import (
	"context"
	"sync/atomic"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Pool caps how many executions run at once. A size of one reproduces the
// production sandbox, which judges a single job at a time.
type Pool struct {
	next   Executor
	sem    *semaphore.Weighted
	busy   atomic.Int64
	logger *zap.Logger
}

func NewPool(next Executor, size int, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{next: next, sem: semaphore.NewWeighted(int64(size)), logger: logger}
}

func (p *Pool) Execute(ctx context.Context, job Job) (model.CaseOutcome, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		p.logger.Debug("execution slot wait abandoned", zap.Error(err))
		return model.CaseOutcome{}, err
	}
	p.busy.Add(1)
	defer func() {
		p.busy.Add(-1)
		p.sem.Release(1)
	}()
	return p.next.Execute(ctx, job)
}

// Busy reports how many slots are taken.
func (p *Pool) Busy() int { return int(p.busy.Load()) }
