package audit

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository writes limit change logs.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs an audit repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// Log writes one limit change entry.
func (r *Repository) Log(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO parameter_update_logs (
	id, actor, role, machine_name, parameter_name, set_type,
	previous_limit, new_limit, ip, user_agent, changed_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)`, entry.ID, entry.Actor, entry.Role, entry.MachineName, entry.ParameterName, string(entry.SetType),
		entry.PreviousLimit, entry.NewLimit, entry.IP, entry.UserAgent, entry.ChangedAt)
	return err
}

// Recent returns the latest limit changes, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("audit repo: nil db")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, actor, role, machine_name, parameter_name, set_type,
	previous_limit, new_limit, ip, user_agent, changed_at
FROM parameter_update_logs
ORDER BY changed_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var setType string
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Role, &entry.MachineName, &entry.ParameterName, &setType,
			&entry.PreviousLimit, &entry.NewLimit, &entry.IP, &entry.UserAgent, &entry.ChangedAt); err != nil {
			return nil, err
		}
		entry.SetType = SetType(setType)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
