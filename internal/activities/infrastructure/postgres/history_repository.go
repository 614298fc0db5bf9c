package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	activities "machinehealth-cloud/internal/activities/domain"
	status "machinehealth-cloud/internal/status/domain"
)

const historyColumns = `id, machine_parameter_id, parameter_name, condition,
	date_of_identification, latest_occurrence, target_date_of_completion,
	actual_date_of_completion, number_of_occurrences, corrective_measurement,
	spare_required, support_needed, responsible_person, priority,
	recent_value, created_at`

// HistoryRepository archives completed activities and owns the
// pending-to-history transition.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository constructs a history repository.
func NewHistoryRepository(db *sql.DB) (*HistoryRepository, error) {
	if db == nil {
		return nil, errors.New("history repo: nil db")
	}
	return &HistoryRepository{db: db}, nil
}

// Complete moves one pending record into history. The history insert and
// the pending delete run in a single transaction; a missing pending id
// rolls back with ErrNotFound.
func (r *HistoryRepository) Complete(ctx context.Context, pendingID string, input activities.CompletionInput) (*activities.CompletedActivity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
SELECT `+pendingColumns+`
FROM corrective_activities
WHERE id = $1
FOR UPDATE`, pendingID)
	pending, err := scanPending(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, activities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	completed := &activities.CompletedActivity{
		ID:                     pending.ID,
		MachineParameterID:     pending.MachineParameterID,
		ParameterName:          pending.ParameterName,
		Condition:              pending.Condition,
		DateOfIdentification:   pending.DateOfIdentification,
		LatestOccurrence:       pending.LatestOccurrence,
		TargetDateOfCompletion: pending.TargetDateOfCompletion,
		ActualDateOfCompletion: input.CompletedAt,
		NumberOfOccurrences:    pending.NumberOfOccurrences,
		CorrectiveMeasurement:  input.CorrectiveMeasurement,
		SpareRequired:          input.SpareRequired,
		SupportNeeded:          input.SupportNeeded,
		ResponsiblePerson:      input.ResponsiblePerson,
		Priority:               input.Priority,
		RecentValue:            pending.RecentValue,
		CreatedAt:              pending.CreatedAt,
	}
	if !input.TargetDateOfCompletion.IsZero() {
		completed.TargetDateOfCompletion = input.TargetDateOfCompletion
	}
	if completed.SpareRequired == "" {
		completed.SpareRequired = pending.SpareRequired
	}
	if completed.SupportNeeded == "" {
		completed.SupportNeeded = pending.SupportNeeded
	}
	if completed.Priority == "" {
		completed.Priority = pending.Priority
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO activity_history (`+historyColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		completed.ID, completed.MachineParameterID, completed.ParameterName, string(completed.Condition),
		completed.DateOfIdentification, completed.LatestOccurrence, nullTime(completed.TargetDateOfCompletion),
		completed.ActualDateOfCompletion, completed.NumberOfOccurrences, completed.CorrectiveMeasurement,
		completed.SpareRequired, completed.SupportNeeded, completed.ResponsiblePerson, completed.Priority,
		completed.RecentValue, completed.CreatedAt); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM corrective_activities WHERE id = $1`, pendingID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return completed, nil
}

// ListAll returns the completed history, newest completion first.
func (r *HistoryRepository) ListAll(ctx context.Context) ([]activities.CompletedActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+historyColumns+`
FROM activity_history
ORDER BY actual_date_of_completion DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompleted(rows)
}

// ListBetween returns completed records identified inside [start, end],
// newest completion first.
func (r *HistoryRepository) ListBetween(ctx context.Context, start, end time.Time) ([]activities.CompletedActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+historyColumns+`
FROM activity_history
WHERE date_of_identification >= $1
	AND date_of_identification <= $2
ORDER BY actual_date_of_completion DESC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompleted(rows)
}

func collectCompleted(rows *sql.Rows) ([]activities.CompletedActivity, error) {
	var list []activities.CompletedActivity
	for rows.Next() {
		var completed activities.CompletedActivity
		var condition string
		var target sql.NullTime
		if err := rows.Scan(&completed.ID, &completed.MachineParameterID, &completed.ParameterName, &condition,
			&completed.DateOfIdentification, &completed.LatestOccurrence, &target,
			&completed.ActualDateOfCompletion, &completed.NumberOfOccurrences, &completed.CorrectiveMeasurement,
			&completed.SpareRequired, &completed.SupportNeeded, &completed.ResponsiblePerson, &completed.Priority,
			&completed.RecentValue, &completed.CreatedAt); err != nil {
			return nil, err
		}
		completed.Condition = status.Condition(condition)
		if target.Valid {
			completed.TargetDateOfCompletion = target.Time.UTC()
		}
		list = append(list, completed)
	}
	return list, rows.Err()
}

// AbnormalitySummary counts open and completed records per condition.
func (r *HistoryRepository) AbnormalitySummary(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT 'Pending' AS bucket, condition, COUNT(*)
FROM corrective_activities
GROUP BY condition
UNION ALL
SELECT 'Completed' AS bucket, condition, COUNT(*)
FROM activity_history
GROUP BY condition`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := map[string]map[string]int{
		activities.StatusPending:   {},
		activities.StatusCompleted: {},
	}
	for rows.Next() {
		var bucket, condition string
		var count int
		if err := rows.Scan(&bucket, &condition, &count); err != nil {
			return nil, err
		}
		if summary[bucket] == nil {
			summary[bucket] = map[string]int{}
		}
		summary[bucket][condition] = count
	}
	return summary, rows.Err()
}
