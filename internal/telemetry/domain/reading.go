package telemetry

import "time"

// ParameterReading is one recorded sample for a machine parameter.
type ParameterReading struct {
	MachineParameterID int64
	MachineName        string
	ParameterName      string
	Value              *float64
	RecordedAt         time.Time
}

// SnapshotRow joins a parameter's latest reading with its placement
// and configured limits. A nil Value means no sample has arrived inside
// the liveness horizon.
type SnapshotRow struct {
	GroupName          string
	LineName           string
	MachineName        string
	MachineParameterID int64
	ParameterName      string
	DisplayName        string
	InternalName       string
	ParameterType      string
	WarningLimit       *float64
	CriticalLimit      *float64
	Value              *float64
	UpdatedAt          time.Time
}
