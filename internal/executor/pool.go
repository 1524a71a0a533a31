package executor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crucial707/threatwatch/internal/metrics"
	"github.com/crucial707/threatwatch/internal/queue"
)

// PoolConfig controls the executor worker pool.
type PoolConfig struct {
	// Workers is the number of concurrent executor goroutines.
	Workers int
	// Poll is how long an idle worker waits before checking the queue again.
	Poll time.Duration
	// Lease is the queue visibility timeout per claimed request; it should
	// exceed ExecTimeout so a live execution cannot be redelivered.
	Lease time.Duration
	// ExecTimeout bounds one execution end to end.
	ExecTimeout time.Duration
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Poll <= 0 {
		c.Poll = time.Second
	}
	if c.ExecTimeout <= 0 {
		c.ExecTimeout = 2 * time.Minute
	}
	if c.Lease <= 0 {
		c.Lease = c.ExecTimeout + time.Minute
	}
	return c
}

// RunPool drains the dispatch queue with cfg.Workers goroutines until ctx is
// cancelled. Terminal outcomes (success, failure, noop) ack the request;
// retryable ones nack it so the queue redelivers.
func RunPool(ctx context.Context, q queue.Queue, ex *Executor, cfg PoolConfig, log *slog.Logger) {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			worker(ctx, q, ex, cfg, log.With("worker", idx))
		}(i)
	}
	wg.Wait()
}

func worker(ctx context.Context, q queue.Queue, ex *Executor, cfg PoolConfig, log *slog.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}

		req, lease, found, err := q.DequeueWithLease(ctx, cfg.Lease)
		if err != nil {
			log.Error("worker: dequeue failed", "error", err)
			sleepCtx(ctx, cfg.Poll)
			continue
		}
		if !found {
			sleepCtx(ctx, cfg.Poll)
			continue
		}

		execCtx, cancel := context.WithTimeout(ctx, cfg.ExecTimeout)
		metrics.IncScansRunning()
		outcome := ex.Execute(execCtx, req)
		metrics.DecScansRunning()
		cancel()
		metrics.IncScansTotal(string(outcome))

		// Ack/nack outside the execution timeout so a slow scan can still
		// settle its queue state.
		switch outcome {
		case OutcomeRetry:
			if err := q.Nack(ctx, lease); err != nil {
				// Lease expiry redelivers anyway, just later.
				log.Error("worker: nack failed", "request_id", req.ID, "error", err)
			}
		default:
			if err := q.Ack(ctx, lease); err != nil {
				log.Error("worker: ack failed", "request_id", req.ID, "error", err)
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
