package application

import (
	"context"
	"errors"
	"log"
	"time"

	"machinehealth-cloud/internal/audit"
	masterdata "machinehealth-cloud/internal/masterdata/domain"
	"machinehealth-cloud/internal/observability/metrics"
)

// ParameterStore persists machine parameters.
type ParameterStore interface {
	Get(ctx context.Context, id int64) (*masterdata.MachineParameter, error)
	ListByMachine(ctx context.Context, machineID int64) ([]masterdata.MachineParameter, error)
	UpdateLimits(ctx context.Context, id int64, warning, critical *float64) error
}

// MachineStore reads machine master data.
type MachineStore interface {
	Get(ctx context.Context, id int64) (*masterdata.Machine, error)
	List(ctx context.Context) ([]masterdata.Machine, error)
}

// LimitUpdate is one operator edit of a parameter's limits. A nil limit
// leaves the stored value untouched.
type LimitUpdate struct {
	ParameterID   int64
	WarningLimit  *float64
	CriticalLimit *float64
	Actor         string
	Role          string
	IP            string
	UserAgent     string
}

// ParameterService applies limit edits with ordering validation and an
// audit trail.
type ParameterService struct {
	parameters ParameterStore
	machines   MachineStore
	auditLog   audit.Logger
	logger     *log.Logger
}

// NewParameterService constructs a parameter service. The audit logger
// may be nil; edits then go unrecorded.
func NewParameterService(parameters ParameterStore, machines MachineStore, auditLog audit.Logger, logger *log.Logger) (*ParameterService, error) {
	if parameters == nil {
		return nil, errors.New("parameter service: nil parameter store")
	}
	if machines == nil {
		return nil, errors.New("parameter service: nil machine store")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ParameterService{parameters: parameters, machines: machines, auditLog: auditLog, logger: logger}, nil
}

// UpdateLimits validates and applies one limit edit. The resulting pair
// must satisfy the parameter type's ordering rule before anything is
// written; a violating edit fails with ErrInvalidLimitOrdering and
// leaves the stored limits untouched.
func (s *ParameterService) UpdateLimits(ctx context.Context, update LimitUpdate) (err error) {
	defer func() { metrics.IncLimitEdit(err) }()

	if update.ParameterID <= 0 {
		return errors.New("parameter service: parameter id required")
	}
	if update.WarningLimit == nil && update.CriticalLimit == nil {
		return errors.New("parameter service: no limits provided")
	}

	parameter, err := s.parameters.Get(ctx, update.ParameterID)
	if err != nil {
		return err
	}
	if parameter == nil {
		return masterdata.ErrUnknownParameter
	}

	warning := parameter.WarningLimit
	if update.WarningLimit != nil {
		warning = update.WarningLimit
	}
	critical := parameter.CriticalLimit
	if update.CriticalLimit != nil {
		critical = update.CriticalLimit
	}

	if err = masterdata.ValidateLimitOrdering(parameter.ParameterType, warning, critical); err != nil {
		return err
	}

	if err = s.parameters.UpdateLimits(ctx, update.ParameterID, warning, critical); err != nil {
		return err
	}

	s.recordEdits(ctx, parameter, update, warning, critical)
	return nil
}

func (s *ParameterService) recordEdits(ctx context.Context, parameter *masterdata.MachineParameter, update LimitUpdate, warning, critical *float64) {
	if s.auditLog == nil {
		return
	}
	machineName := ""
	if machine, err := s.machines.Get(ctx, parameter.MachineID); err == nil && machine != nil {
		machineName = machine.Name
	}

	now := time.Now().UTC()
	if update.WarningLimit != nil {
		s.logEntry(ctx, audit.Entry{
			Actor:         update.Actor,
			Role:          update.Role,
			MachineName:   machineName,
			ParameterName: parameter.Name,
			SetType:       audit.SetTypeWarning,
			PreviousLimit: parameter.WarningLimit,
			NewLimit:      warning,
			IP:            update.IP,
			UserAgent:     update.UserAgent,
			ChangedAt:     now,
		})
	}
	if update.CriticalLimit != nil {
		s.logEntry(ctx, audit.Entry{
			Actor:         update.Actor,
			Role:          update.Role,
			MachineName:   machineName,
			ParameterName: parameter.Name,
			SetType:       audit.SetTypeCritical,
			PreviousLimit: parameter.CriticalLimit,
			NewLimit:      critical,
			IP:            update.IP,
			UserAgent:     update.UserAgent,
			ChangedAt:     now,
		})
	}
}

func (s *ParameterService) logEntry(ctx context.Context, entry audit.Entry) {
	if err := s.auditLog.Log(ctx, entry); err != nil {
		s.logger.Printf("masterdata: audit write failed for %s/%s: %v", entry.MachineName, entry.ParameterName, err)
	}
}

// ListMachines returns the configured machines.
func (s *ParameterService) ListMachines(ctx context.Context) ([]masterdata.Machine, error) {
	return s.machines.List(ctx)
}

// GetParameter returns one parameter.
func (s *ParameterService) GetParameter(ctx context.Context, id int64) (*masterdata.MachineParameter, error) {
	parameter, err := s.parameters.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if parameter == nil {
		return nil, masterdata.ErrUnknownParameter
	}
	return parameter, nil
}

// MachineParameters returns every parameter configured on one machine.
func (s *ParameterService) MachineParameters(ctx context.Context, machineID int64) ([]masterdata.MachineParameter, error) {
	machine, err := s.machines.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, masterdata.ErrUnknownMachine
	}
	return s.parameters.ListByMachine(ctx, machineID)
}
