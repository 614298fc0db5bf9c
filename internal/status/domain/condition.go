package status

// Condition is the health state of a parameter or an aggregate node.
type Condition string

const (
	ConditionOK           Condition = "OK"
	ConditionWarning      Condition = "WARNING"
	ConditionCritical     Condition = "CRITICAL"
	ConditionDisconnected Condition = "DISCONNECTED"
)

// Valid returns true when the condition is one of the known states.
func (c Condition) Valid() bool {
	switch c {
	case ConditionOK, ConditionWarning, ConditionCritical, ConditionDisconnected:
		return true
	default:
		return false
	}
}

// Severity orders conditions for rollup comparison:
// OK < WARNING < CRITICAL < DISCONNECTED.
func (c Condition) Severity() int {
	switch c {
	case ConditionWarning:
		return 1
	case ConditionCritical:
		return 2
	case ConditionDisconnected:
		return 3
	default:
		return 0
	}
}

// ConditionCount tallies the conditions of a node's direct children.
// The field order matches the dashboard JSON contract.
type ConditionCount struct {
	OK           int `json:"OK"`
	Warning      int `json:"WARNING"`
	Critical     int `json:"CRITICAL"`
	Disconnected int `json:"DISCONNECTED"`
}

// Add increments the tally for one child condition.
func (c *ConditionCount) Add(condition Condition) {
	switch condition {
	case ConditionWarning:
		c.Warning++
	case ConditionCritical:
		c.Critical++
	case ConditionDisconnected:
		c.Disconnected++
	default:
		c.OK++
	}
}

// Total returns the number of tallied children.
func (c ConditionCount) Total() int {
	return c.OK + c.Warning + c.Critical + c.Disconnected
}

// State resolves the aggregate condition of the tallied children.
// DISCONNECTED wins only when every child is disconnected; otherwise a
// single CRITICAL child outranks any number of disconnected ones.
func (c ConditionCount) State() Condition {
	total := c.Total()
	switch {
	case total > 0 && c.Disconnected == total:
		return ConditionDisconnected
	case c.Critical > 0:
		return ConditionCritical
	case c.Warning > 0:
		return ConditionWarning
	default:
		return ConditionOK
	}
}
