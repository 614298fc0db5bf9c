package postgres

import (
	"context"
	"database/sql"
	"errors"

	masterdata "machinehealth-cloud/internal/masterdata/domain"
)

const machineColumns = `id, name, group_name, line_name, machine_number, short_name, description, enabled`

// MachineRepository reads machine master data.
type MachineRepository struct {
	db *sql.DB
}

// NewMachineRepository constructs a machine repository.
func NewMachineRepository(db *sql.DB) (*MachineRepository, error) {
	if db == nil {
		return nil, errors.New("machine repo: nil db")
	}
	return &MachineRepository{db: db}, nil
}

// Get returns one machine, or nil when it does not exist.
func (r *MachineRepository) Get(ctx context.Context, id int64) (*masterdata.Machine, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+machineColumns+`
FROM machines
WHERE id = $1`, id)

	machine, err := scanMachine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return machine, nil
}

// GetByName returns one machine by its unique name, or nil when it does
// not exist.
func (r *MachineRepository) GetByName(ctx context.Context, name string) (*masterdata.Machine, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+machineColumns+`
FROM machines
WHERE name = $1`, name)

	machine, err := scanMachine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return machine, nil
}

// List returns every enabled machine, grouped for the dashboard.
func (r *MachineRepository) List(ctx context.Context) ([]masterdata.Machine, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+machineColumns+`
FROM machines
WHERE enabled
ORDER BY group_name, line_name, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var machines []masterdata.Machine
	for rows.Next() {
		machine, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		machines = append(machines, *machine)
	}
	return machines, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMachine(row rowScanner) (*masterdata.Machine, error) {
	var machine masterdata.Machine
	if err := row.Scan(&machine.ID, &machine.Name, &machine.GroupName, &machine.LineName,
		&machine.MachineNumber, &machine.ShortName, &machine.Description, &machine.Enabled); err != nil {
		return nil, err
	}
	return &machine, nil
}
