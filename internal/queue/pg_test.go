package queue

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPG_EnqueueBatch_SingleStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO scan_requests \(monitor_id\)\s+SELECT unnest`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	q := NewPG(db)
	if err := q.EnqueueBatch(context.Background(), []string{"m1", "m2", "m3"}); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPG_EnqueueBatch_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// No expectations: empty batch must not hit the store.
	q := NewPG(db)
	if err := q.EnqueueBatch(context.Background(), nil); err != nil {
		t.Fatalf("EnqueueBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPG_DequeueWithLease(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	enqueued := time.Now().UTC().Add(-time.Minute)
	mock.ExpectQuery(`UPDATE scan_requests\s+SET leased_until`).
		WithArgs(float64(300)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "monitor_id", "enqueued_at", "attempt_count"}).
			AddRow(42, "mon-1", enqueued, 1))

	q := NewPG(db)
	req, lease, found, err := q.DequeueWithLease(context.Background(), 5*time.Minute)
	if err != nil {
		t.Fatalf("DequeueWithLease: %v", err)
	}
	if !found {
		t.Fatal("expected a request")
	}
	if req.MonitorID != "mon-1" || req.AttemptCount != 1 || Lease(req.ID) != lease {
		t.Errorf("unexpected request: %+v lease=%d", req, lease)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPG_DequeueWithLease_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE scan_requests\s+SET leased_until`).
		WithArgs(float64(300)).
		WillReturnError(sql.ErrNoRows)

	q := NewPG(db)
	_, _, found, err := q.DequeueWithLease(context.Background(), 5*time.Minute)
	if err != nil {
		t.Fatalf("DequeueWithLease: %v", err)
	}
	if found {
		t.Error("expected empty queue")
	}
}

func TestPG_AckDeletes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM scan_requests WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	q := NewPG(db)
	if err := q.Ack(context.Background(), Lease(42)); err != nil {
		t.Fatalf("Ack: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPG_NackReleasesLease(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE scan_requests SET leased_until = NULL WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	q := NewPG(db)
	if err := q.Nack(context.Background(), Lease(42)); err != nil {
		t.Fatalf("Nack: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
