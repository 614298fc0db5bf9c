package events

import "time"

// ConditionDetected is raised by the condition sweep for every abnormal
// classified reading. The tracker consumes it to open or refresh a
// pending activity.
type ConditionDetected struct {
	MachineParameterID int64     `json:"machine_parameter_id"`
	MachineName        string    `json:"machine_name"`
	ParameterName      string    `json:"parameter_name"`
	Condition          string    `json:"condition"`
	Value              float64   `json:"value"`
	ObservedAt         time.Time `json:"observed_at"`
}
