package activities

import (
	"errors"
	"time"

	status "machinehealth-cloud/internal/status/domain"
)

const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// PendingActivity is an open abnormal-condition record awaiting operator
// action. At most one exists per (parameter, condition) pair; repeated
// readings of the same condition update the existing record.
type PendingActivity struct {
	ID                     string
	MachineParameterID     int64
	ParameterName          string
	Condition              status.Condition
	DateOfIdentification   time.Time
	LatestOccurrence       time.Time
	TargetDateOfCompletion time.Time
	NumberOfOccurrences    int
	CorrectiveMeasurement  string
	SpareRequired          string
	SupportNeeded          string
	ResponsiblePerson      string
	Priority               string
	RecentValue            float64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// CompletedActivity is the immutable history snapshot written when a
// pending activity is completed. It is never updated after insertion.
type CompletedActivity struct {
	ID                     string
	MachineParameterID     int64
	ParameterName          string
	Condition              status.Condition
	DateOfIdentification   time.Time
	LatestOccurrence       time.Time
	TargetDateOfCompletion time.Time
	ActualDateOfCompletion time.Time
	NumberOfOccurrences    int
	CorrectiveMeasurement  string
	SpareRequired          string
	SupportNeeded          string
	ResponsiblePerson      string
	Priority               string
	RecentValue            float64
	CreatedAt              time.Time
}

// CompletionInput carries the operator-supplied metadata that closes a
// pending activity.
type CompletionInput struct {
	CorrectiveMeasurement  string
	SpareRequired          string
	SupportNeeded          string
	ResponsiblePerson      string
	Priority               string
	TargetDateOfCompletion time.Time
	CompletedAt            time.Time
}

// Validate checks the completion metadata.
func (c CompletionInput) Validate() error {
	if c.ResponsiblePerson == "" {
		return errors.New("activities: responsible person required")
	}
	if c.CorrectiveMeasurement == "" {
		return errors.New("activities: corrective measurement required")
	}
	return nil
}

// Occurrence is one classified non-OK reading fed into the tracker.
type Occurrence struct {
	MachineParameterID int64
	ParameterName      string
	Condition          status.Condition
	Value              float64
	ObservedAt         time.Time
}

// Abnormal reports whether the occurrence should open or refresh a
// pending activity. Only WARNING and CRITICAL do; OK and DISCONNECTED
// never touch the lifecycle.
func (o Occurrence) Abnormal() bool {
	return o.Condition == status.ConditionWarning || o.Condition == status.ConditionCritical
}
