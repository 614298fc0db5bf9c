package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	telemetry "machinehealth-cloud/internal/telemetry/domain"
)

const (
	defaultReadingsTable = "parameter_readings"
)

// TelemetryQuery is a Postgres query implementation.
type TelemetryQuery struct {
	db       *sql.DB
	table    string
	liveness time.Duration
}

// QueryOption configures the telemetry query.
type QueryOption func(*TelemetryQuery)

// WithReadingsTable overrides the default readings table name.
func WithReadingsTable(table string) QueryOption {
	return func(query *TelemetryQuery) {
		if query != nil && table != "" {
			query.table = table
		}
	}
}

// WithLivenessHorizon overrides how old the latest reading may be
// before a parameter counts as disconnected.
func WithLivenessHorizon(horizon time.Duration) QueryOption {
	return func(query *TelemetryQuery) {
		if query != nil && horizon > 0 {
			query.liveness = horizon
		}
	}
}

// NewTelemetryQuery constructs a query with defaults.
func NewTelemetryQuery(db *sql.DB, opts ...QueryOption) *TelemetryQuery {
	query := &TelemetryQuery{db: db, table: defaultReadingsTable, liveness: 10 * time.Minute}
	for _, opt := range opts {
		opt(query)
	}
	return query
}

// LatestSnapshot returns the latest reading per enabled machine parameter,
// joined with placement and limits. Parameters whose newest reading is
// older than the liveness horizon come back with a nil Value.
func (q *TelemetryQuery) LatestSnapshot(ctx context.Context, groupName string) ([]telemetry.SnapshotRow, error) {
	if q == nil || q.db == nil {
		return nil, errors.New("telemetry query: nil db")
	}

	query := fmt.Sprintf(`
SELECT m.group_name, m.line_name, m.name,
	p.id, p.name, p.display_name, p.internal_name, p.parameter_type,
	p.warning_limit, p.critical_limit,
	r.value, r.recorded_at
FROM machine_parameters p
JOIN machines m ON m.id = p.machine_id
LEFT JOIN LATERAL (
	SELECT value, recorded_at
	FROM %s
	WHERE machine_parameter_id = p.id
	ORDER BY recorded_at DESC
	LIMIT 1
) r ON TRUE
WHERE m.enabled
	AND ($1 = '' OR m.group_name = $1)
ORDER BY m.group_name, m.line_name, m.name, p.name`, q.table)

	rows, err := q.db.QueryContext(ctx, query, groupName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cutoff := time.Now().UTC().Add(-q.liveness)
	var snapshot []telemetry.SnapshotRow
	for rows.Next() {
		var row telemetry.SnapshotRow
		var value sql.NullFloat64
		var recordedAt sql.NullTime
		if err := rows.Scan(&row.GroupName, &row.LineName, &row.MachineName,
			&row.MachineParameterID, &row.ParameterName, &row.DisplayName, &row.InternalName, &row.ParameterType,
			&row.WarningLimit, &row.CriticalLimit,
			&value, &recordedAt); err != nil {
			return nil, err
		}
		if recordedAt.Valid {
			row.UpdatedAt = recordedAt.Time.UTC()
		}
		if value.Valid && recordedAt.Valid && !recordedAt.Time.Before(cutoff) {
			v := value.Float64
			row.Value = &v
		}
		snapshot = append(snapshot, row)
	}
	return snapshot, rows.Err()
}

// ReadingsBetween returns samples for one parameter within [start, end),
// oldest first.
func (q *TelemetryQuery) ReadingsBetween(ctx context.Context, machineParameterID int64, start, end time.Time) ([]telemetry.ParameterReading, error) {
	if q == nil || q.db == nil {
		return nil, errors.New("telemetry query: nil db")
	}
	if machineParameterID <= 0 || start.IsZero() || end.IsZero() {
		return nil, errors.New("telemetry query: invalid arguments")
	}

	query := fmt.Sprintf(`
SELECT r.machine_parameter_id, m.name, p.name, r.value, r.recorded_at
FROM %s r
JOIN machine_parameters p ON p.id = r.machine_parameter_id
JOIN machines m ON m.id = p.machine_id
WHERE r.machine_parameter_id = $1
	AND r.recorded_at >= $2
	AND r.recorded_at < $3
ORDER BY r.recorded_at ASC`, q.table)

	rows, err := q.db.QueryContext(ctx, query, machineParameterID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []telemetry.ParameterReading
	for rows.Next() {
		var reading telemetry.ParameterReading
		var value sql.NullFloat64
		if err := rows.Scan(&reading.MachineParameterID, &reading.MachineName, &reading.ParameterName, &value, &reading.RecordedAt); err != nil {
			return nil, err
		}
		if value.Valid {
			v := value.Float64
			reading.Value = &v
		}
		reading.RecordedAt = reading.RecordedAt.UTC()
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
