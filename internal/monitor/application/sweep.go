package application

import (
	"context"
	"errors"
	"log"
	"time"

	"machinehealth-cloud/internal/activities/application/events"
	"machinehealth-cloud/internal/observability/metrics"
	status "machinehealth-cloud/internal/status/domain"
)

// SnapshotClassifier supplies the latest classified reading per
// parameter.
type SnapshotClassifier interface {
	Snapshot(ctx context.Context) ([]status.ClassifiedParameter, error)
}

// EventPublisher raises events to the in-process bus.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Sweeper periodically classifies the plant and raises a
// ConditionDetected event for every abnormal parameter.
type Sweeper struct {
	classifier SnapshotClassifier
	publisher  EventPublisher
	logger     *log.Logger
	interval   time.Duration
	timeout    time.Duration
}

// NewSweeper constructs a condition sweeper.
func NewSweeper(classifier SnapshotClassifier, publisher EventPublisher, logger *log.Logger, cfg Config) (*Sweeper, error) {
	if classifier == nil {
		return nil, errors.New("monitor: nil classifier")
	}
	if publisher == nil {
		return nil, errors.New("monitor: nil publisher")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{
		classifier: classifier,
		publisher:  publisher,
		logger:     logger,
		interval:   cfg.SweepInterval,
		timeout:    cfg.QueryTimeout,
	}, nil
}

// Start runs the sweep loop until the context is canceled. One sweep
// runs immediately so a fresh deployment raises overdue conditions
// without waiting a full interval.
func (s *Sweeper) Start(ctx context.Context) {
	if err := s.Sweep(ctx); err != nil {
		s.logger.Printf("monitor: sweep failed: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Printf("monitor: sweep failed: %v", err)
			}
		}
	}
}

// Sweep runs one classification pass.
func (s *Sweeper) Sweep(ctx context.Context) error {
	started := time.Now()
	err := s.sweep(ctx)
	metrics.ObserveSweep(err, time.Since(started))
	return err
}

func (s *Sweeper) sweep(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snapshot, err := s.classifier.Snapshot(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	for _, parameter := range snapshot {
		if parameter.Condition != status.ConditionWarning && parameter.Condition != status.ConditionCritical {
			continue
		}
		value := 0.0
		if parameter.Value != nil {
			value = *parameter.Value
		}
		event := events.ConditionDetected{
			MachineParameterID: parameter.MachineParameterID,
			MachineName:        parameter.MachineName,
			ParameterName:      parameter.ParameterName,
			Condition:          string(parameter.Condition),
			Value:              value,
			ObservedAt:         parameter.UpdatedAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Printf("monitor: publish %s/%s failed: %v", parameter.MachineName, parameter.ParameterName, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
