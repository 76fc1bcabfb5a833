// ABOUTME: Category tagged variant and Violation data model
// ABOUTME: Violations are data, never Go errors; they are collected, not thrown

package models

// Category groups a Violation by the rule family that raised it.
type Category string

const (
	CategoryCapacity   Category = "Capacity"
	CategoryPlacement  Category = "Placement"
	CategoryOperator   Category = "Operator"
	CategoryValidation Category = "Validation"
)

// Violation is one Deterministic Rule failing against the resolved workload.
type Violation struct {
	RuleID   string   `json:"rule_id"`
	Category Category `json:"category"`
	Detail   string   `json:"detail"`
}

// PlacementInfeasibleRuleID is the dedicated rule id for a planner that could
// not assign a feasibility-confirmed workload (spec §7: treated as a
// Placement violation).
const PlacementInfeasibleRuleID = "PLACEMENT_INFEASIBLE"

// CapacityExceededRuleID is the rule id for a C1 total-demand failure.
const CapacityExceededRuleID = "C1"
