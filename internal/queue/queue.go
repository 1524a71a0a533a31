// Package queue provides the durable at-least-once dispatch queue carrying
// scan requests from the scheduler to executor workers.
package queue

import (
	"context"
	"time"

	"github.com/crucial707/threatwatch/internal/models"
)

// Lease identifies a dequeued request until it is acked or nacked.
type Lease int64

// Enqueuer is the producer side of the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, monitorID string) error
	EnqueueBatch(ctx context.Context, monitorIDs []string) error
}

// Queue is the full dispatch queue contract. Delivery is at-least-once: a
// request not acked before its lease expires is redelivered to another
// consumer, so consumers must tolerate duplicates.
type Queue interface {
	Enqueuer

	// DequeueWithLease claims the oldest visible request for leaseFor.
	// found is false when the queue is empty.
	DequeueWithLease(ctx context.Context, leaseFor time.Duration) (req models.ScanRequest, lease Lease, found bool, err error)

	// Ack removes a completed request permanently.
	Ack(ctx context.Context, lease Lease) error

	// Nack releases the lease so the request is redelivered immediately.
	Nack(ctx context.Context, lease Lease) error
}
