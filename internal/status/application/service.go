package application

import (
	"context"
	"errors"
	"log"
	"time"

	masterdata "machinehealth-cloud/internal/masterdata/domain"
	"machinehealth-cloud/internal/observability/metrics"
	status "machinehealth-cloud/internal/status/domain"
	telemetry "machinehealth-cloud/internal/telemetry/domain"
)

// SnapshotSource supplies the latest reading per parameter. An empty
// group name means all groups.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context, groupName string) ([]telemetry.SnapshotRow, error)
}

// OverviewResponse is the dashboard landing payload.
type OverviewResponse struct {
	GroupNames      []status.GroupOverview `json:"group_names"`
	AllGroupDetails []status.GroupNode     `json:"all_group_details"`
}

// Service computes status rollups from live snapshots.
type Service struct {
	source SnapshotSource
	logger *log.Logger
}

// NewService constructs a status service.
func NewService(source SnapshotSource, logger *log.Logger) (*Service, error) {
	if source == nil {
		return nil, errors.New("status service: nil snapshot source")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{source: source, logger: logger}, nil
}

// Overview returns every group's rollup tree plus the compact state list.
func (s *Service) Overview(ctx context.Context) (*OverviewResponse, error) {
	started := time.Now()
	groups, err := s.rollup(ctx, "")
	metrics.ObserveRollup(err, time.Since(started))
	if err != nil {
		return nil, err
	}
	return &OverviewResponse{
		GroupNames:      status.Overview(groups),
		AllGroupDetails: groups,
	}, nil
}

// Group returns one group's rollup tree.
func (s *Service) Group(ctx context.Context, groupName string) (*status.GroupNode, error) {
	if groupName == "" {
		return nil, errors.New("status service: empty group name")
	}
	started := time.Now()
	groups, err := s.rollup(ctx, groupName)
	metrics.ObserveRollup(err, time.Since(started))
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, status.ErrUnknownGroup
	}
	return &groups[0], nil
}

// Snapshot classifies the latest readings without aggregating them.
// The condition sweep consumes this to raise abnormality events.
func (s *Service) Snapshot(ctx context.Context) ([]status.ClassifiedParameter, error) {
	return s.classified(ctx, "")
}

func (s *Service) rollup(ctx context.Context, groupName string) ([]status.GroupNode, error) {
	classified, err := s.classified(ctx, groupName)
	if err != nil {
		return nil, err
	}
	return status.Rollup(classified), nil
}

func (s *Service) classified(ctx context.Context, groupName string) ([]status.ClassifiedParameter, error) {
	snapshot, err := s.source.LatestSnapshot(ctx, groupName)
	if err != nil {
		return nil, err
	}

	classified := make([]status.ClassifiedParameter, 0, len(snapshot))
	for _, row := range snapshot {
		typ := masterdata.ParameterType(row.ParameterType)
		condition := status.ConditionDisconnected
		if typ.Valid() {
			condition = status.Classify(row.Value, typ, row.WarningLimit, row.CriticalLimit)
		} else {
			metrics.IncClassifyError()
			s.logger.Printf("status: unknown parameter type %q for %s/%s, marking disconnected",
				row.ParameterType, row.MachineName, row.ParameterName)
		}
		classified = append(classified, status.ClassifiedParameter{
			GroupName:          row.GroupName,
			LineName:           row.LineName,
			MachineName:        row.MachineName,
			MachineParameterID: row.MachineParameterID,
			ParameterName:      row.ParameterName,
			DisplayName:        row.DisplayName,
			InternalName:       row.InternalName,
			UpdatedAt:          row.UpdatedAt,
			Value:              row.Value,
			WarningLimit:       row.WarningLimit,
			CriticalLimit:      row.CriticalLimit,
			Condition:          condition,
		})
	}
	return classified, nil
}
