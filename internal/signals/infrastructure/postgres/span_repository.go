package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	signals "machinehealth-cloud/internal/signals/domain"
)

const defaultSpansTable = "state_spans"

// SpanRepository reads machine state spans from Postgres.
type SpanRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*SpanRepository)

// WithSpansTable overrides the default spans table name.
func WithSpansTable(table string) RepositoryOption {
	return func(r *SpanRepository) {
		if r != nil && table != "" {
			r.table = table
		}
	}
}

// NewSpanRepository constructs a span repository.
func NewSpanRepository(db *sql.DB, opts ...RepositoryOption) *SpanRepository {
	repo := &SpanRepository{db: db, table: defaultSpansTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// SpansOverlapping returns every span of one machine state touching
// [windowStart, windowEnd], including spans still open. Overlap is
// inclusive on both edges so boundary spans reach the accumulator,
// which owns the exact case split. Open spans carry a Superseded flag
// computed against the whole table, since the successor that closes a
// stale chain may end before the window and never be fetched.
func (r *SpanRepository) SpansOverlapping(ctx context.Context, machineName string, state signals.MachineState, windowStart, windowEnd time.Time) ([]signals.StateSpan, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("span repo: nil db")
	}
	if machineName == "" || !state.Valid() {
		return nil, errors.New("span repo: invalid arguments")
	}
	if windowEnd.Before(windowStart) {
		return nil, signals.ErrInvalidWindow
	}

	query := fmt.Sprintf(`
SELECT s.signal_id, s.machine_name, s.state, s.start_time, s.end_time, s.asserted, s.duration_seconds,
	(s.end_time IS NULL AND EXISTS (
		SELECT 1 FROM %s newer
		WHERE newer.signal_id = s.signal_id
			AND newer.start_time > s.start_time
	)) AS superseded
FROM %s s
WHERE s.machine_name = $1
	AND s.state = $2
	AND s.start_time <= $4
	AND (s.end_time IS NULL OR s.end_time >= $3)
ORDER BY s.start_time ASC`, r.table, r.table)

	rows, err := r.db.QueryContext(ctx, query, machineName, string(state), windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spans []signals.StateSpan
	for rows.Next() {
		var span signals.StateSpan
		var stateValue string
		var endTime sql.NullTime
		var duration sql.NullFloat64
		if err := rows.Scan(&span.SignalID, &span.MachineName, &stateValue, &span.StartTime, &endTime, &span.Asserted, &duration, &span.Superseded); err != nil {
			return nil, err
		}
		span.State = signals.MachineState(stateValue)
		span.StartTime = span.StartTime.UTC()
		if endTime.Valid {
			span.EndTime = endTime.Time.UTC()
		}
		if duration.Valid {
			span.DurationSeconds = duration.Float64
		}
		spans = append(spans, span)
	}
	return spans, rows.Err()
}
