package status

import (
	"time"

	masterdata "machinehealth-cloud/internal/masterdata/domain"
)

// ClassifiedParameter is one parameter reading placed in the
// group/line/machine hierarchy with its resolved condition.
type ClassifiedParameter struct {
	GroupName          string
	LineName           string
	MachineName        string
	MachineParameterID int64
	ParameterName      string
	DisplayName        string
	InternalName       string
	UpdatedAt          time.Time
	Value              *float64
	WarningLimit       *float64
	CriticalLimit      *float64
	Condition          Condition
}

// Classify maps one raw reading to a condition using the parameter type's
// crossing rule. A nil value means the signal is absent or stale and
// classifies as DISCONNECTED regardless of type. Parameters without both
// limits are dynamic and classify as OK here; their condition comes
// pre-computed from the reference-signal comparison upstream.
func Classify(value *float64, typ masterdata.ParameterType, warning, critical *float64) Condition {
	if value == nil {
		return ConditionDisconnected
	}
	if typ == masterdata.TypeBoolean {
		if *value != 0 {
			return ConditionCritical
		}
		return ConditionOK
	}
	if warning == nil || critical == nil {
		return ConditionOK
	}
	switch typ {
	case masterdata.TypeIncreasing:
		switch {
		case *value >= *critical:
			return ConditionCritical
		case *value >= *warning:
			return ConditionWarning
		default:
			return ConditionOK
		}
	case masterdata.TypeDecreasing:
		switch {
		case *value <= *critical:
			return ConditionCritical
		case *value <= *warning:
			return ConditionWarning
		default:
			return ConditionOK
		}
	default:
		return ConditionOK
	}
}
