package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	activities "machinehealth-cloud/internal/activities/domain"
	status "machinehealth-cloud/internal/status/domain"
)

const pendingColumns = `id, machine_parameter_id, parameter_name, condition,
	date_of_identification, latest_occurrence, target_date_of_completion,
	number_of_occurrences, corrective_measurement, spare_required,
	support_needed, responsible_person, priority, recent_value,
	created_at, updated_at`

// PendingRepository persists open corrective activities.
type PendingRepository struct {
	db *sql.DB
}

// NewPendingRepository constructs a pending repository.
func NewPendingRepository(db *sql.DB) (*PendingRepository, error) {
	if db == nil {
		return nil, errors.New("pending repo: nil db")
	}
	return &PendingRepository{db: db}, nil
}

// GetByParameterCondition returns the open record for one
// (parameter, condition) slot, or nil when the slot is free.
func (r *PendingRepository) GetByParameterCondition(ctx context.Context, parameterID int64, condition status.Condition) (*activities.PendingActivity, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+pendingColumns+`
FROM corrective_activities
WHERE machine_parameter_id = $1 AND condition = $2`, parameterID, string(condition))

	pending, err := scanPending(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// Create inserts a new pending record. The (machine_parameter_id,
// condition) slot is guarded by a unique constraint; losing the insert
// race surfaces as ErrDuplicatePending.
func (r *PendingRepository) Create(ctx context.Context, pending *activities.PendingActivity) error {
	if pending == nil {
		return errors.New("pending repo: nil activity")
	}
	result, err := r.db.ExecContext(ctx, `
INSERT INTO corrective_activities (`+pendingColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (machine_parameter_id, condition) DO NOTHING`,
		pending.ID, pending.MachineParameterID, pending.ParameterName, string(pending.Condition),
		pending.DateOfIdentification, pending.LatestOccurrence, nullTime(pending.TargetDateOfCompletion),
		pending.NumberOfOccurrences, pending.CorrectiveMeasurement, pending.SpareRequired,
		pending.SupportNeeded, pending.ResponsiblePerson, pending.Priority, pending.RecentValue,
		pending.CreatedAt, pending.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return activities.ErrDuplicatePending
	}
	return nil
}

// Refresh bumps the occurrence counter and latest observation of an
// open record.
func (r *PendingRepository) Refresh(ctx context.Context, id string, latestOccurrence time.Time, recentValue float64) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE corrective_activities
SET number_of_occurrences = number_of_occurrences + 1,
	latest_occurrence = $2,
	recent_value = $3,
	updated_at = $4
WHERE id = $1`, id, latestOccurrence, recentValue, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return activities.ErrNotFound
	}
	return nil
}

// Update rewrites operator-editable fields of an open record.
func (r *PendingRepository) Update(ctx context.Context, pending *activities.PendingActivity) error {
	if pending == nil {
		return errors.New("pending repo: nil activity")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE corrective_activities
SET corrective_measurement = $2,
	spare_required = $3,
	support_needed = $4,
	responsible_person = $5,
	priority = $6,
	target_date_of_completion = $7,
	updated_at = $8
WHERE id = $1`,
		pending.ID, pending.CorrectiveMeasurement, pending.SpareRequired, pending.SupportNeeded,
		pending.ResponsiblePerson, pending.Priority, nullTime(pending.TargetDateOfCompletion), pending.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return activities.ErrNotFound
	}
	return nil
}

// ListByParameterName returns open records for one parameter name.
func (r *PendingRepository) ListByParameterName(ctx context.Context, parameterName string) ([]activities.PendingActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+pendingColumns+`
FROM corrective_activities
WHERE parameter_name = $1
ORDER BY date_of_identification ASC`, parameterName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPending(rows)
}

// ListAll returns every open record, oldest identification first.
func (r *PendingRepository) ListAll(ctx context.Context) ([]activities.PendingActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+pendingColumns+`
FROM corrective_activities
ORDER BY date_of_identification ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPending(rows)
}

// ListBetween returns open records identified inside [start, end],
// oldest identification first.
func (r *PendingRepository) ListBetween(ctx context.Context, start, end time.Time) ([]activities.PendingActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+pendingColumns+`
FROM corrective_activities
WHERE date_of_identification >= $1
	AND date_of_identification <= $2
ORDER BY date_of_identification ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPending(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPending(row rowScanner) (*activities.PendingActivity, error) {
	var pending activities.PendingActivity
	var condition string
	var target sql.NullTime
	if err := row.Scan(&pending.ID, &pending.MachineParameterID, &pending.ParameterName, &condition,
		&pending.DateOfIdentification, &pending.LatestOccurrence, &target,
		&pending.NumberOfOccurrences, &pending.CorrectiveMeasurement, &pending.SpareRequired,
		&pending.SupportNeeded, &pending.ResponsiblePerson, &pending.Priority, &pending.RecentValue,
		&pending.CreatedAt, &pending.UpdatedAt); err != nil {
		return nil, err
	}
	pending.Condition = status.Condition(condition)
	if target.Valid {
		pending.TargetDateOfCompletion = target.Time.UTC()
	}
	return &pending, nil
}

func collectPending(rows *sql.Rows) ([]activities.PendingActivity, error) {
	var list []activities.PendingActivity
	for rows.Next() {
		pending, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *pending)
	}
	return list, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
