package postgres

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	signals "machinehealth-cloud/internal/signals/domain"
)

func newSpanMock(t *testing.T, opts ...RepositoryOption) (*SpanRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSpanRepository(db, opts...), mock
}

func TestSpansOverlappingScansOpenSpan(t *testing.T) {
	repo, mock := newSpanMock(t)

	windowStart := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	windowEnd := windowStart.Add(time.Hour)
	spanStart := windowStart.Add(15 * time.Minute)

	mock.ExpectQuery(`FROM state_spans s`).
		WithArgs("M1", "ALARM", windowStart, windowEnd).
		WillReturnRows(sqlmock.NewRows([]string{
			"signal_id", "machine_name", "state", "start_time", "end_time", "asserted", "duration_seconds", "superseded",
		}).
			AddRow("sig-1", "M1", "ALARM", windowStart.Add(-time.Hour), windowStart.Add(5*time.Minute), true, 3900.0, false).
			AddRow("sig-1", "M1", "ALARM", spanStart, nil, true, nil, false))

	spans, err := repo.SpansOverlapping(context.Background(), "M1", signals.StateAlarm, windowStart, windowEnd)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected two spans, got %d", len(spans))
	}
	if spans[0].DurationSeconds != 3900 || spans[0].Open() {
		t.Fatalf("unexpected closed span %+v", spans[0])
	}
	if !spans[1].Open() || !spans[1].StartTime.Equal(spanStart) {
		t.Fatalf("expected open span starting %s, got %+v", spanStart, spans[1])
	}
	if spans[1].Superseded {
		t.Fatal("current open span must not be superseded")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSpansOverlappingFlagsStaleOpenSpan(t *testing.T) {
	repo, mock := newSpanMock(t)

	windowStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 1, 0)

	// An open span from January whose signal already produced a later
	// span; that successor closed before March and is not fetched.
	mock.ExpectQuery(`FROM state_spans s`).
		WithArgs("M1", "ALARM", windowStart, windowEnd).
		WillReturnRows(sqlmock.NewRows([]string{
			"signal_id", "machine_name", "state", "start_time", "end_time", "asserted", "duration_seconds", "superseded",
		}).
			AddRow("sig-1", "M1", "ALARM", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), nil, true, nil, true))

	spans, err := repo.SpansOverlapping(context.Background(), "M1", signals.StateAlarm, windowStart, windowEnd)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(spans) != 1 || !spans[0].Superseded {
		t.Fatalf("expected one superseded span, got %+v", spans)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSpansOverlappingTableOverride(t *testing.T) {
	repo, mock := newSpanMock(t, WithSpansTable("machine_state_spans"))

	windowStart := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, 1)

	mock.ExpectQuery(`FROM machine_state_spans s`).
		WithArgs("M1", "OPERATE", windowStart, windowEnd).
		WillReturnRows(sqlmock.NewRows([]string{
			"signal_id", "machine_name", "state", "start_time", "end_time", "asserted", "duration_seconds", "superseded",
		}))

	spans, err := repo.SpansOverlapping(context.Background(), "M1", signals.StateOperate, windowStart, windowEnd)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if spans != nil {
		t.Fatalf("expected no spans, got %+v", spans)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSpansOverlappingRejectsInvalidState(t *testing.T) {
	repo, _ := newSpanMock(t)

	_, err := repo.SpansOverlapping(context.Background(), "M1", signals.MachineState("BOGUS"), time.Now(), time.Now())
	if err == nil {
		t.Fatal("expected error for invalid state")
	}
}
