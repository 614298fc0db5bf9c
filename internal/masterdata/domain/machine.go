package masterdata

// Machine is a single monitored machine on the factory floor.
// GroupName and LineName place it in the plant hierarchy used by
// the status rollup.
type Machine struct {
	ID            int64
	Name          string
	GroupName     string
	LineName      string
	MachineNumber string
	ShortName     string
	Description   string
	Enabled       bool
}

// ParameterGroup groups related parameters (battery, temperature, ...) across machines.
type ParameterGroup struct {
	ID            int64
	GroupName     string
	ParameterType ParameterType
	SignalPattern string
}
