package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crucial707/threatwatch/internal/models"
	"github.com/crucial707/threatwatch/internal/queue"
	"github.com/crucial707/threatwatch/internal/search"
)

// memQueue is a minimal in-memory Queue for pool tests.
type memQueue struct {
	mu      sync.Mutex
	pending []models.ScanRequest
	acked   []queue.Lease
	nacked  []queue.Lease
}

func (q *memQueue) Enqueue(ctx context.Context, monitorID string) error {
	return q.EnqueueBatch(ctx, []string{monitorID})
}

func (q *memQueue) EnqueueBatch(ctx context.Context, monitorIDs []string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range monitorIDs {
		q.pending = append(q.pending, models.ScanRequest{
			ID:         int64(len(q.pending) + len(q.acked) + len(q.nacked) + 1),
			MonitorID:  id,
			EnqueuedAt: time.Now(),
		})
	}
	return nil
}

func (q *memQueue) DequeueWithLease(ctx context.Context, leaseFor time.Duration) (models.ScanRequest, queue.Lease, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return models.ScanRequest{}, 0, false, nil
	}
	req := q.pending[0]
	q.pending = q.pending[1:]
	return req, queue.Lease(req.ID), true, nil
}

func (q *memQueue) Ack(ctx context.Context, l queue.Lease) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, l)
	return nil
}

func (q *memQueue) Nack(ctx context.Context, l queue.Lease) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nacked = append(q.nacked, l)
	return nil
}

func (q *memQueue) counts() (acked, nacked int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.acked), len(q.nacked)
}

// Draining three requests for three active monitors produces three reports,
// three success audit rows, and three acks.
func TestRunPool_DrainsQueue(t *testing.T) {
	f := newFixture(nil)
	for _, id := range []string{"m1", "m2", "m3"} {
		m := activeMonitor()
		m.ID = id
		f.monitors.monitors[id] = m
	}

	q := &memQueue{}
	if err := q.EnqueueBatch(context.Background(), []string{"m1", "m2", "m3"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunPool(ctx, q, f.ex, PoolConfig{Workers: 2, Poll: time.Millisecond, ExecTimeout: time.Second}, nil)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		acked, _ := q.counts()
		if acked == 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out: acked=%d", acked)
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if len(f.reports.created) != 3 {
		t.Errorf("reports = %d, want 3", len(f.reports.created))
	}
	if len(f.audit.entries) != 3 {
		t.Errorf("audit rows = %d, want 3", len(f.audit.entries))
	}
	_, nacked := q.counts()
	if nacked != 0 {
		t.Errorf("nacked = %d, want 0", nacked)
	}
}

// Retryable outcomes nack the request instead of acking it.
func TestRunPool_NacksRetryableOutcome(t *testing.T) {
	f := newFixture(activeMonitor())
	f.reports.err = errTest

	q := &memQueue{}
	if err := q.Enqueue(context.Background(), "mon-1"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunPool(ctx, q, f.ex, PoolConfig{Workers: 1, Poll: time.Millisecond, ExecTimeout: time.Second}, nil)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		_, nacked := q.counts()
		if nacked >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for nack")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	acked, _ := q.counts()
	if acked != 0 {
		t.Errorf("acked = %d, want 0", acked)
	}
}

var errTest = errors.New("persist failed")

var _ search.Client = (*fakeSearch)(nil)
