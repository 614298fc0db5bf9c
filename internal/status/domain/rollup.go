package status

import (
	"sort"
)

// ParameterStatus is the leaf of the rollup tree. Field names are the
// dashboard contract and must not change.
type ParameterStatus struct {
	ActualParameterName   string    `json:"actual_parameter_name"`
	DisplayName           string    `json:"display_name"`
	InternalParameterName string    `json:"internal_parameter_name"`
	LatestUpdateTime      int64     `json:"latest_update_time"`
	ParameterValue        *float64  `json:"parameter_value"`
	ParameterState        Condition `json:"parameter_state"`
	WarningLimit          *float64  `json:"warning_limit"`
	CriticalLimit         *float64  `json:"critical_limit"`
}

// MachineNode aggregates the parameters of one machine.
type MachineNode struct {
	MachineName  string            `json:"machine_name"`
	MachineState Condition         `json:"machine_state"`
	Parameters   []ParameterStatus `json:"parameters"`
}

// LineNode aggregates the machines of one production line. Count tallies
// machine conditions: each machine contributes exactly one unit.
type LineNode struct {
	LineName  string         `json:"line_name"`
	LineState Condition      `json:"line_state"`
	Count     ConditionCount `json:"count"`
	Machines  []MachineNode  `json:"machines"`
}

// GroupNode is the root of one parameter group's rollup tree. Count
// tallies line conditions: each line contributes exactly one unit.
type GroupNode struct {
	GroupName    string         `json:"group_name"`
	GroupState   Condition      `json:"group_state"`
	Count        ConditionCount `json:"count"`
	GroupDetails []LineNode     `json:"group_details"`
}

// GroupOverview is the compact state entry served with the full tree.
type GroupOverview struct {
	ItemName  string    `json:"item_name"`
	ItemState Condition `json:"item_state"`
}

// Rollup builds the four-level parameter -> machine -> line -> group
// aggregation bottom-up from a flat classified snapshot. Each node's
// count tallies its direct children only. Machines with zero parameters
// never reach this function: the snapshot carries only parameters, so a
// machine appears exactly when it has at least one.
//
// Output ordering is deterministic: groups and lines sort
// lexicographically, machines sort by natural alphanumeric key ("M2"
// before "M10"), parameters sort by name.
func Rollup(snapshot []ClassifiedParameter) []GroupNode {
	type machineBucket struct {
		params []ClassifiedParameter
	}
	type lineBucket struct {
		machines map[string]*machineBucket
	}
	type groupBucket struct {
		lines map[string]*lineBucket
	}

	groups := make(map[string]*groupBucket)
	for _, p := range snapshot {
		group, ok := groups[p.GroupName]
		if !ok {
			group = &groupBucket{lines: make(map[string]*lineBucket)}
			groups[p.GroupName] = group
		}
		line, ok := group.lines[p.LineName]
		if !ok {
			line = &lineBucket{machines: make(map[string]*machineBucket)}
			group.lines[p.LineName] = line
		}
		machine, ok := line.machines[p.MachineName]
		if !ok {
			machine = &machineBucket{}
			line.machines[p.MachineName] = machine
		}
		machine.params = append(machine.params, p)
	}

	result := make([]GroupNode, 0, len(groups))
	for _, groupName := range sortedKeys(groups) {
		group := groups[groupName]
		groupNode := GroupNode{GroupName: groupName, GroupState: ConditionOK}

		for _, lineName := range sortedKeys(group.lines) {
			line := group.lines[lineName]
			lineNode := LineNode{LineName: lineName, LineState: ConditionOK}

			machineNames := make([]string, 0, len(line.machines))
			for name := range line.machines {
				machineNames = append(machineNames, name)
			}
			sort.SliceStable(machineNames, func(i, j int) bool {
				return NaturalLess(machineNames[i], machineNames[j])
			})

			for _, machineName := range machineNames {
				machineNode, machineState := buildMachineNode(machineName, line.machines[machineName].params)
				lineNode.Count.Add(machineState)
				lineNode.Machines = append(lineNode.Machines, machineNode)
			}

			lineNode.LineState = lineNode.Count.State()
			groupNode.Count.Add(lineNode.LineState)
			groupNode.GroupDetails = append(groupNode.GroupDetails, lineNode)
		}

		groupNode.GroupState = groupNode.Count.State()
		result = append(result, groupNode)
	}
	return result
}

// Overview reduces a rollup to the per-group state list.
func Overview(groups []GroupNode) []GroupOverview {
	overview := make([]GroupOverview, 0, len(groups))
	for _, group := range groups {
		overview = append(overview, GroupOverview{ItemName: group.GroupName, ItemState: group.GroupState})
	}
	return overview
}

func buildMachineNode(name string, params []ClassifiedParameter) (MachineNode, Condition) {
	sort.SliceStable(params, func(i, j int) bool {
		return params[i].ParameterName < params[j].ParameterName
	})

	node := MachineNode{MachineName: name, MachineState: ConditionOK}
	var count ConditionCount
	for _, p := range params {
		condition := p.Condition
		if !condition.Valid() {
			condition = ConditionDisconnected
		}
		node.Parameters = append(node.Parameters, ParameterStatus{
			ActualParameterName:   p.ParameterName,
			DisplayName:           p.DisplayName,
			InternalParameterName: p.InternalName,
			LatestUpdateTime:      p.UpdatedAt.UnixMilli(),
			ParameterValue:        p.Value,
			ParameterState:        condition,
			WarningLimit:          p.WarningLimit,
			CriticalLimit:         p.CriticalLimit,
		})
		count.Add(condition)
	}
	node.MachineState = count.State()
	return node, node.MachineState
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
