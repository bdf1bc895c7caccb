package overlap

import (
	"context"
	"sync"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/events"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Dispatcher runs advisory checks on background goroutines when no broker is
// configured. At most limit checks run at once; extra ones wait.
type Dispatcher struct {
	advisor *Advisor
	sem     *semaphore.Weighted
	timeout time.Duration
	wg      sync.WaitGroup
	logger  *zap.Logger
}

func NewDispatcher(advisor *Advisor, limit int64, timeout time.Duration, logger ...*zap.Logger) *Dispatcher {
	l := zap.L().Named("overlap.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("overlap.dispatcher")
	}
	if limit <= 0 {
		limit = 4
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		advisor: advisor,
		sem:     semaphore.NewWeighted(limit),
		timeout: timeout,
		logger:  l,
	}
}

// Dispatch returns immediately. The check outlives the request context.
func (d *Dispatcher) Dispatch(ctx context.Context, evt events.LeaveRequestedEvent) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("overlap check panicked", zap.Any("panic", r), zap.String("leave_id", evt.LeaveID))
			}
		}()

		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		if err := d.sem.Acquire(runCtx, 1); err != nil {
			d.logger.Warn("overlap check dropped", zap.String("leave_id", evt.LeaveID), zap.Error(err))
			return
		}
		defer d.sem.Release(1)

		d.advisor.Check(runCtx, evt)
	}()
}

// Wait blocks until every dispatched check has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
