package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	activities "machinehealth-cloud/internal/activities/domain"
	status "machinehealth-cloud/internal/status/domain"
)

func newMockRepo(t *testing.T) (*PendingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo, err := NewPendingRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo, mock
}

func samplePending() *activities.PendingActivity {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	return &activities.PendingActivity{
		ID:                   "activity-1",
		MachineParameterID:   7,
		ParameterName:        "spindle_temp",
		Condition:            status.ConditionWarning,
		DateOfIdentification: now,
		LatestOccurrence:     now,
		NumberOfOccurrences:  1,
		RecentValue:          81.5,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func TestCreateInsertsRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO corrective_activities`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), samplePending()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateConflictIsDuplicatePending(t *testing.T) {
	repo, mock := newMockRepo(t)

	// ON CONFLICT DO NOTHING reports zero affected rows when the slot is taken.
	mock.ExpectExec(`INSERT INTO corrective_activities`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), samplePending())
	if !errors.Is(err, activities.ErrDuplicatePending) {
		t.Fatalf("expected ErrDuplicatePending, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRefreshIncrementsOccurrences(t *testing.T) {
	repo, mock := newMockRepo(t)

	observed := time.Date(2026, 8, 30, 9, 5, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE corrective_activities`).
		WithArgs("activity-1", observed, 83.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Refresh(context.Background(), "activity-1", observed, 83.0); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRefreshMissingRecord(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE corrective_activities`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Refresh(context.Background(), "ghost", time.Now().UTC(), 1)
	if !errors.Is(err, activities.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListBetweenBoundsIdentificationDate(t *testing.T) {
	repo, mock := newMockRepo(t)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	identified := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)

	columns := []string{
		"id", "machine_parameter_id", "parameter_name", "condition",
		"date_of_identification", "latest_occurrence", "target_date_of_completion",
		"number_of_occurrences", "corrective_measurement", "spare_required",
		"support_needed", "responsible_person", "priority", "recent_value",
		"created_at", "updated_at",
	}
	rows := sqlmock.NewRows(columns).AddRow(
		"activity-1", int64(7), "spindle_temp", "WARNING",
		identified, identified, nil,
		2, "", "", "", "", "", 81.5,
		identified, identified,
	)
	mock.ExpectQuery(`FROM corrective_activities\s+WHERE date_of_identification >= \$1\s+AND date_of_identification <= \$2`).
		WithArgs(start, end).
		WillReturnRows(rows)

	list, err := repo.ListBetween(context.Background(), start, end)
	if err != nil {
		t.Fatalf("list between: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}
	if !list[0].DateOfIdentification.Equal(identified) {
		t.Fatalf("date of identification = %v, want %v", list[0].DateOfIdentification, identified)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByParameterConditionNoRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM corrective_activities`).
		WithArgs(int64(7), "WARNING").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	pending, err := repo.GetByParameterCondition(context.Background(), 7, status.ConditionWarning)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if pending != nil {
		t.Fatalf("expected nil for free slot, got %+v", pending)
	}
}
