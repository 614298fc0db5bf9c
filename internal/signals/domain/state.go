package signals

// MachineState is one of the mutually exclusive operating states a
// machine reports through its status signals.
type MachineState string

const (
	StateOperate    MachineState = "OPERATE"
	StateManual     MachineState = "MANUAL"
	StateStop       MachineState = "STOP"
	StateAlarm      MachineState = "ALARM"
	StateEmergency  MachineState = "EMERGENCY"
	StateSuspend    MachineState = "SUSPEND"
	StateDisconnect MachineState = "DISCONNECT"
)

// AllMachineStates returns the tracked states in display order.
func AllMachineStates() []MachineState {
	return []MachineState{
		StateOperate,
		StateManual,
		StateStop,
		StateAlarm,
		StateEmergency,
		StateSuspend,
		StateDisconnect,
	}
}

// Valid reports whether the state is one of the tracked states.
func (s MachineState) Valid() bool {
	switch s {
	case StateOperate, StateManual, StateStop, StateAlarm, StateEmergency, StateSuspend, StateDisconnect:
		return true
	default:
		return false
	}
}
