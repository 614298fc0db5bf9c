package masterdata

// ParameterType selects the threshold crossing rule for a parameter.
type ParameterType string

const (
	TypeIncreasing ParameterType = "increasing"
	TypeDecreasing ParameterType = "decreasing"
	TypeBoolean    ParameterType = "boolean"
)

// Valid returns true when the parameter type is supported.
func (t ParameterType) Valid() bool {
	switch t {
	case TypeIncreasing, TypeDecreasing, TypeBoolean:
		return true
	default:
		return false
	}
}

// MachineParameter defines one monitored parameter of a machine.
// Warning/critical limits are nil for dynamic parameters, which are
// evaluated against a reference signal instead of fixed limits.
type MachineParameter struct {
	ID            int64
	Name          string
	DisplayName   string
	InternalName  string
	MachineID     int64
	GroupID       int64
	ParameterType ParameterType
	WarningLimit  *float64
	CriticalLimit *float64
}

// ValidateLimitOrdering checks that warning/critical limits are ordered
// correctly for the parameter type: increasing parameters require
// critical > warning, decreasing require critical < warning. Dynamic
// parameters (either limit nil) and boolean parameters carry no limits
// and always pass.
func ValidateLimitOrdering(typ ParameterType, warning, critical *float64) error {
	if warning == nil || critical == nil {
		return nil
	}
	switch typ {
	case TypeIncreasing:
		if *critical <= *warning {
			return ErrInvalidLimitOrdering
		}
	case TypeDecreasing:
		if *critical >= *warning {
			return ErrInvalidLimitOrdering
		}
	case TypeBoolean:
		// Boolean parameters have no numeric limits.
	}
	return nil
}
