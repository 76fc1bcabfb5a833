// ABOUTME: PlacementPlan data model: pod-instance to SocketSlot assignments
// ABOUTME: Produced by PlacementPlanner; remaining vcores are tracked per slot for reporting

package models

// Assignment is one pod instance's placement onto a SocketSlot.
type Assignment struct {
	InstanceKey string  `json:"instance_key"`
	Kind        PodKind `json:"kind"`
	Vcores      float64 `json:"vcores"`
	ServerIndex int     `json:"server_index"`
	SocketIndex int     `json:"socket_index"`
}

// SlotUsage reports a slot's budget and what remains after every assignment.
type SlotUsage struct {
	Slot            SocketSlot `json:"slot"`
	VcoresUsed      float64    `json:"vcores_used"`
	VcoresRemaining float64    `json:"vcores_remaining"`
}

// PlacementPlan maps pod instances to sockets, in insertion (placement) order.
//
// Invariant: for every slot, Σ assigned pod vcores <= slot.VcoresAvailable.
type PlacementPlan struct {
	Strategy    PlacementStrategy `json:"strategy"`
	Assignments []Assignment      `json:"assignments"`
	SlotUsage   []SlotUsage       `json:"slot_usage"`
}

// PlacementStrategy selects the planner's slot-choice heuristic.
type PlacementStrategy string

const (
	StrategyFirstFit PlacementStrategy = "first-fit"
	StrategyBestFit  PlacementStrategy = "best-fit"
	StrategyWorstFit PlacementStrategy = "worst-fit"
	StrategyBalanced PlacementStrategy = "balanced"
)

// FallbackOrder is the fixed single-level retry sequence the planner walks
// through for a pod that cannot be placed under the preferred strategy
// (design notes §9: first-fit -> best-fit -> worst-fit, no cross-pod
// backtracking).
func FallbackOrder() []PlacementStrategy {
	return []PlacementStrategy{StrategyFirstFit, StrategyBestFit, StrategyWorstFit}
}

// AssignmentFor returns the Assignment for the given instance key, if placed.
func (p PlacementPlan) AssignmentFor(instanceKey string) (Assignment, bool) {
	for _, a := range p.Assignments {
		if a.InstanceKey == instanceKey {
			return a, true
		}
	}
	return Assignment{}, false
}
