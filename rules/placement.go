// ABOUTME: PlacementEvaluator: rules M1-M4, feasibility pre-checks ahead of planning
// ABOUTME: Checks counts and socket totals only; actual (server,socket) assignment is PlacementPlanner's job

package rules

import (
	"fmt"

	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
)

// PlacementEvaluator evaluates M1-M4. These are feasibility checks on pod
// counts and total socket counts, not actual socket assignment: the
// DR source material interleaves placement generation with rule
// evaluation, but spec §4.8 fixes a strict stage order (Capacity before
// Placement before Operator, all before planning). M1-M4 here verify a
// plan *could* exist; PlacementPlanner is what builds one, and reports
// PLACEMENT_INFEASIBLE if the pre-check passed but no arrangement works.
type PlacementEvaluator struct {
	Catalog *catalog.RuleCatalog
}

// NewPlacementEvaluator constructs a PlacementEvaluator bound to the given catalog.
func NewPlacementEvaluator(c *catalog.RuleCatalog) *PlacementEvaluator {
	return &PlacementEvaluator{Catalog: c}
}

// Evaluate runs M1-M4 against the resolved workload and slot table.
func (e *PlacementEvaluator) Evaluate(w models.ResolvedWorkload, slots []models.SocketSlot) []models.Violation {
	var violations []models.Violation

	violations = append(violations, e.m1MandatoryPodsPresent(w)...)

	totalSockets := len(slots)

	if w.Input.FeatureFlags.InServiceUpgrade {
		dpp, ok := w.ByKind(models.DPP)
		if ok && dpp.Quantity > 1 && totalSockets < 2 {
			violations = append(violations, models.Violation{
				RuleID:   "M2",
				Category: models.CategoryPlacement,
				Detail:   fmt.Sprintf("in_service_upgrade requires DPP instances on distinct sockets; need >= 2 sockets, have %d", totalSockets),
			})
		}
	}

	if w.Input.FeatureFlags.VDURUSwitchConnection {
		dpp, dppOK := w.ByKind(models.DPP)
		rmp, rmpOK := w.ByKind(models.RMP)
		if dppOK && rmpOK && dpp.Quantity != rmp.Quantity {
			violations = append(violations, models.Violation{
				RuleID:   "M3",
				Category: models.CategoryPlacement,
				Detail:   fmt.Sprintf("vdu_ru_switch_connection requires one RMP per DPP; DPP=%d RMP=%d", dpp.Quantity, rmp.Quantity),
			})
		}
	}

	if w.Input.FeatureFlags.HAEnabled {
		cmp, ok := w.ByKind(models.CMP)
		switch {
		case !ok:
			violations = append(violations, models.Violation{
				RuleID:   "M4",
				Category: models.CategoryPlacement,
				Detail:   "ha_enabled requires exactly 2 CMP pods, found 0",
			})
		case cmp.Quantity != 2:
			violations = append(violations, models.Violation{
				RuleID:   "M4",
				Category: models.CategoryPlacement,
				Detail:   fmt.Sprintf("ha_enabled requires exactly 2 CMP pods, found %d", cmp.Quantity),
			})
		case totalSockets < 2:
			violations = append(violations, models.Violation{
				RuleID:   "M4",
				Category: models.CategoryPlacement,
				Detail:   fmt.Sprintf("ha_enabled requires CMP instances on distinct sockets; need >= 2 sockets, have %d", totalSockets),
			})
		}
	}

	return violations
}

// m1MandatoryPodsPresent checks every catalog-mandatory PodKind appears in
// the resolved workload, independent of operator (M1 proper; O1 re-checks
// the operator-specific subset).
func (e *PlacementEvaluator) m1MandatoryPodsPresent(w models.ResolvedWorkload) []models.Violation {
	var violations []models.Violation
	for _, kind := range models.MandatoryPodKinds() {
		if _, ok := w.ByKind(kind); !ok {
			violations = append(violations, models.Violation{
				RuleID:   "M1",
				Category: models.CategoryPlacement,
				Detail:   fmt.Sprintf("mandatory pod %s is missing from the resolved workload", kind),
			})
		}
	}
	return violations
}
