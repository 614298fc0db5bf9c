package application

import (
	"context"
	"errors"
	"time"

	activities "machinehealth-cloud/internal/activities/domain"
	"machinehealth-cloud/internal/observability/metrics"
	status "machinehealth-cloud/internal/status/domain"
)

// PendingStore persists open activities. Create must fail with
// activities.ErrDuplicatePending when another writer already holds the
// (parameter, condition) slot, backed by a unique constraint.
type PendingStore interface {
	GetByParameterCondition(ctx context.Context, parameterID int64, condition status.Condition) (*activities.PendingActivity, error)
	Create(ctx context.Context, pending *activities.PendingActivity) error
	Refresh(ctx context.Context, id string, latestOccurrence time.Time, recentValue float64) error
	Update(ctx context.Context, pending *activities.PendingActivity) error
	ListByParameterName(ctx context.Context, parameterName string) ([]activities.PendingActivity, error)
}

// Completer archives a pending record into immutable history and removes
// it from the active set in a single transaction.
type Completer interface {
	Complete(ctx context.Context, pendingID string, input activities.CompletionInput) (*activities.CompletedActivity, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// IDFactory mints identifiers for new pending activities.
type IDFactory interface {
	NewID() string
}

// Tracker maintains the pending/completed state machine for abnormal
// conditions. Records for different conditions of the same parameter are
// independent.
type Tracker struct {
	pending   PendingStore
	completer Completer
	clock     Clock
	ids       IDFactory
}

// TrackerOption customizes the tracker.
type TrackerOption func(*Tracker)

// WithClock assigns a clock.
func WithClock(clock Clock) TrackerOption {
	return func(t *Tracker) { t.clock = clock }
}

// WithIDFactory assigns an id factory.
func WithIDFactory(ids IDFactory) TrackerOption {
	return func(t *Tracker) { t.ids = ids }
}

// NewTracker constructs an activity tracker.
func NewTracker(pending PendingStore, completer Completer, opts ...TrackerOption) (*Tracker, error) {
	if pending == nil {
		return nil, errors.New("activities: nil pending store")
	}
	if completer == nil {
		return nil, errors.New("activities: nil completer")
	}
	tracker := &Tracker{
		pending:   pending,
		completer: completer,
		clock:     systemClock{},
		ids:       randomIDs{},
	}
	for _, opt := range opts {
		opt(tracker)
	}
	return tracker, nil
}

// Record feeds one classified reading into the lifecycle. OK and
// DISCONNECTED readings are ignored: returning to OK never auto-completes
// an open activity. A first abnormal reading opens a pending record; a
// repeat of the same condition refreshes it. A create that loses the race
// to a concurrent writer is retried as the refresh case.
func (t *Tracker) Record(ctx context.Context, occ activities.Occurrence) error {
	if t == nil {
		return errors.New("activities: nil tracker")
	}
	if !occ.Abnormal() {
		return nil
	}
	if occ.MachineParameterID == 0 {
		return errors.New("activities: occurrence missing parameter id")
	}
	observedAt := occ.ObservedAt
	if observedAt.IsZero() {
		observedAt = t.clock.Now().UTC()
	}

	open, err := t.pending.GetByParameterCondition(ctx, occ.MachineParameterID, occ.Condition)
	if err != nil {
		return err
	}
	if open != nil {
		metrics.IncActivityTransition("refresh")
		return t.pending.Refresh(ctx, open.ID, observedAt, occ.Value)
	}

	pending := &activities.PendingActivity{
		ID:                   t.ids.NewID(),
		MachineParameterID:   occ.MachineParameterID,
		ParameterName:        occ.ParameterName,
		Condition:            occ.Condition,
		DateOfIdentification: observedAt,
		LatestOccurrence:     observedAt,
		NumberOfOccurrences:  1,
		RecentValue:          occ.Value,
		CreatedAt:            t.clock.Now().UTC(),
		UpdatedAt:            t.clock.Now().UTC(),
	}
	err = t.pending.Create(ctx, pending)
	if err == nil {
		metrics.IncActivityTransition("open")
		return nil
	}
	if !errors.Is(err, activities.ErrDuplicatePending) {
		return err
	}

	// Lost the compare-and-create race: fold into the existing record.
	open, getErr := t.pending.GetByParameterCondition(ctx, occ.MachineParameterID, occ.Condition)
	if getErr != nil {
		return getErr
	}
	if open == nil {
		return err
	}
	metrics.IncActivityTransition("refresh")
	return t.pending.Refresh(ctx, open.ID, observedAt, occ.Value)
}

// Complete closes a pending activity with operator metadata. The history
// insert and the pending delete happen in one transaction; on failure the
// pending record stays untouched.
func (t *Tracker) Complete(ctx context.Context, pendingID string, input activities.CompletionInput) (*activities.CompletedActivity, error) {
	if t == nil {
		return nil, errors.New("activities: nil tracker")
	}
	if pendingID == "" {
		return nil, errors.New("activities: pending id required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.CompletedAt.IsZero() {
		input.CompletedAt = t.clock.Now().UTC()
	}
	completed, err := t.completer.Complete(ctx, pendingID, input)
	if err != nil {
		return nil, err
	}
	metrics.IncActivityTransition("complete")
	return completed, nil
}

// ActivityUpdate is one operator edit from the maintenance board. Status
// "Completed" closes every pending record of the parameter; anything else
// patches the pending metadata in place.
type ActivityUpdate struct {
	ParameterName          string
	Status                 string
	CorrectiveMeasurement  string
	SpareRequired          string
	SupportNeeded          string
	ResponsiblePerson      string
	Priority               string
	TargetDateOfCompletion time.Time
}

// Apply processes one board update against all pending records of the
// named parameter.
func (t *Tracker) Apply(ctx context.Context, update ActivityUpdate) error {
	if t == nil {
		return errors.New("activities: nil tracker")
	}
	if update.ParameterName == "" {
		return errors.New("activities: parameter name required")
	}
	open, err := t.pending.ListByParameterName(ctx, update.ParameterName)
	if err != nil {
		return err
	}
	if len(open) == 0 {
		return activities.ErrNotFound
	}

	if update.Status == activities.StatusCompleted {
		input := activities.CompletionInput{
			CorrectiveMeasurement:  update.CorrectiveMeasurement,
			SpareRequired:          update.SpareRequired,
			SupportNeeded:          update.SupportNeeded,
			ResponsiblePerson:      update.ResponsiblePerson,
			Priority:               update.Priority,
			TargetDateOfCompletion: update.TargetDateOfCompletion,
		}
		for _, pending := range open {
			if _, err := t.Complete(ctx, pending.ID, input); err != nil {
				return err
			}
		}
		return nil
	}

	for i := range open {
		pending := open[i]
		if update.CorrectiveMeasurement != "" {
			pending.CorrectiveMeasurement = update.CorrectiveMeasurement
		}
		if update.SpareRequired != "" {
			pending.SpareRequired = update.SpareRequired
		}
		if update.SupportNeeded != "" {
			pending.SupportNeeded = update.SupportNeeded
		}
		if update.ResponsiblePerson != "" {
			pending.ResponsiblePerson = update.ResponsiblePerson
		}
		if update.Priority != "" {
			pending.Priority = update.Priority
		}
		if !update.TargetDateOfCompletion.IsZero() {
			pending.TargetDateOfCompletion = update.TargetDateOfCompletion
		}
		pending.UpdatedAt = t.clock.Now().UTC()
		if err := t.pending.Update(ctx, &pending); err != nil {
			return err
		}
	}
	return nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
