package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const monitorCols = "id, owner_id, query_text, frequency, next_run_at, active, created_at"

func monitorRows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	return sqlmock.NewRows([]string{"id", "owner_id", "query_text", "frequency", "next_run_at", "active", "created_at"})
}

func TestMonitorRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	next := now.Add(24 * time.Hour)
	mock.ExpectQuery(`INSERT INTO monitors`).
		WithArgs("user-1", "ransomware acme corp", "daily", next).
		WillReturnRows(monitorRows(t).
			AddRow("3f2c3e1a-0000-0000-0000-000000000001", "user-1", "ransomware acme corp", "daily", next, true, now))

	r := NewMonitorRepo(db)
	m, err := r.Create(context.Background(), "user-1", "ransomware acme corp", "daily", next)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.ID == "" || m.OwnerID != "user-1" || !m.Active || !m.NextRunAt.Equal(next) {
		t.Errorf("unexpected monitor: %+v", m)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMonitorRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT ` + monitorCols + ` FROM monitors WHERE id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	r := NewMonitorRepo(db)
	m, err := r.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil monitor, got %+v", m)
	}
}

// QueryDue must be a single bulk read filtered on active = true in SQL,
// never one query per monitor.
func TestMonitorRepo_QueryDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT ` + monitorCols + ` FROM monitors\s+WHERE active = true AND next_run_at <= \$1`).
		WithArgs(now).
		WillReturnRows(monitorRows(t).
			AddRow("id-1", "user-1", "q1", "daily", now.Add(-time.Hour), true, now.Add(-48*time.Hour)).
			AddRow("id-2", "user-2", "q2", "weekly", now.Add(-time.Minute), true, now.Add(-200*time.Hour)))

	r := NewMonitorRepo(db)
	due, err := r.QueryDue(context.Background(), now)
	if err != nil {
		t.Fatalf("QueryDue: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due monitors, got %d", len(due))
	}
	if due[0].ID != "id-1" || due[1].Frequency != "weekly" {
		t.Errorf("unexpected due set: %+v", due)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// BulkReschedule issues exactly one UPDATE for any number of monitors.
func TestMonitorRepo_BulkReschedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE monitors m\s+SET next_run_at = u.next_run_at`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	now := time.Now().UTC()
	ids := []string{"id-1", "id-2", "id-3"}
	next := []time.Time{now.Add(24 * time.Hour), now.Add(24 * time.Hour), now.Add(7 * 24 * time.Hour)}

	r := NewMonitorRepo(db)
	if err := r.BulkReschedule(context.Background(), ids, next); err != nil {
		t.Fatalf("BulkReschedule: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMonitorRepo_BulkReschedule_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// No expectations: an empty reschedule must not touch the store.
	r := NewMonitorRepo(db)
	if err := r.BulkReschedule(context.Background(), nil, nil); err != nil {
		t.Fatalf("BulkReschedule: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMonitorRepo_BulkReschedule_LengthMismatch(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := NewMonitorRepo(db)
	if err := r.BulkReschedule(context.Background(), []string{"id-1"}, nil); err == nil {
		t.Fatal("expected error on mismatched slice lengths")
	}
}

func TestMonitorRepo_Deactivate_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE monitors SET active = false`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewMonitorRepo(db)
	if err := r.Deactivate(context.Background(), "missing"); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}
