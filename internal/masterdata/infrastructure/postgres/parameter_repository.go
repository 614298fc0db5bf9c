package postgres

import (
	"context"
	"database/sql"
	"errors"

	masterdata "machinehealth-cloud/internal/masterdata/domain"
)

// ParameterRepository persists machine parameters.
type ParameterRepository struct {
	db *sql.DB
}

// NewParameterRepository constructs a parameter repository.
func NewParameterRepository(db *sql.DB) (*ParameterRepository, error) {
	if db == nil {
		return nil, errors.New("parameter repo: nil db")
	}
	return &ParameterRepository{db: db}, nil
}

// Get returns one parameter, or nil when it does not exist.
func (r *ParameterRepository) Get(ctx context.Context, id int64) (*masterdata.MachineParameter, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, display_name, internal_name, machine_id, group_id,
	parameter_type, warning_limit, critical_limit
FROM machine_parameters
WHERE id = $1`, id)

	var parameter masterdata.MachineParameter
	var parameterType string
	err := row.Scan(&parameter.ID, &parameter.Name, &parameter.DisplayName, &parameter.InternalName,
		&parameter.MachineID, &parameter.GroupID, &parameterType,
		&parameter.WarningLimit, &parameter.CriticalLimit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	parameter.ParameterType = masterdata.ParameterType(parameterType)
	return &parameter, nil
}

// UpdateLimits writes the limit pair of one parameter.
func (r *ParameterRepository) UpdateLimits(ctx context.Context, id int64, warning, critical *float64) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE machine_parameters
SET warning_limit = $2, critical_limit = $3
WHERE id = $1`, id, warning, critical)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return masterdata.ErrUnknownParameter
	}
	return nil
}

// ListByMachine returns every parameter of one machine, sorted by name.
func (r *ParameterRepository) ListByMachine(ctx context.Context, machineID int64) ([]masterdata.MachineParameter, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, display_name, internal_name, machine_id, group_id,
	parameter_type, warning_limit, critical_limit
FROM machine_parameters
WHERE machine_id = $1
ORDER BY name ASC`, machineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parameters []masterdata.MachineParameter
	for rows.Next() {
		var parameter masterdata.MachineParameter
		var parameterType string
		if err := rows.Scan(&parameter.ID, &parameter.Name, &parameter.DisplayName, &parameter.InternalName,
			&parameter.MachineID, &parameter.GroupID, &parameterType,
			&parameter.WarningLimit, &parameter.CriticalLimit); err != nil {
			return nil, err
		}
		parameter.ParameterType = masterdata.ParameterType(parameterType)
		parameters = append(parameters, parameter)
	}
	return parameters, rows.Err()
}
