// ABOUTME: CapacityEvaluator: rules C1-C4, builds the SocketSlot table
// ABOUTME: Downstream evaluators and the planner consume the slot table this produces

package rules

import (
	"fmt"

	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
)

// CapacityEvaluator evaluates C1-C4 against a ResolvedWorkload and produces
// the per-socket vcore budget table every later stage relies on.
type CapacityEvaluator struct {
	Catalog *catalog.RuleCatalog
}

// NewCapacityEvaluator constructs a CapacityEvaluator bound to the given catalog.
func NewCapacityEvaluator(c *catalog.RuleCatalog) *CapacityEvaluator {
	return &CapacityEvaluator{Catalog: c}
}

// Evaluate checks C2 per server, builds the slot table (C3/C4 deductions),
// then checks C1 against it, and returns the SocketSlot table plus any
// violations. The slot table is still returned on failure so callers can
// report per-socket utilization regardless of outcome (spec §12 metrics).
func (e *CapacityEvaluator) Evaluate(w models.ResolvedWorkload) ([]models.SocketSlot, []models.Violation) {
	var violations []models.Violation

	for i, server := range w.Input.ServerConfigs {
		if server.Vcores != server.Pcores*2 {
			violations = append(violations, models.Violation{
				RuleID:   "C2",
				Category: models.CategoryCapacity,
				Detail:   fmt.Sprintf("server %d: vcores %d does not equal 2*pcores (%d)", i, server.Vcores, server.Pcores*2),
			})
		}
	}

	slots := e.buildSlots(w.Input)

	demand := w.TotalDemandVcores()
	supply := 0.0
	for _, s := range slots {
		supply += s.VcoresAvailable
	}
	if demand > supply {
		violations = append(violations, models.Violation{
			RuleID:   models.CapacityExceededRuleID,
			Category: models.CategoryCapacity,
			Detail:   fmt.Sprintf("demand=%.1f supply=%.1f deficit=%.1f", demand, supply, demand-supply),
		})
	}

	return slots, violations
}

// buildSlots computes the SocketSlot table (C2-C4): per-socket total vcores
// divided evenly from the server, minus the operator's CaaS (C3) and shared
// (C4) core deductions, each converted from pcores to vcores by the fixed
// ×2 ratio.
func (e *CapacityEvaluator) buildSlots(input models.DeploymentInput) []models.SocketSlot {
	caasPcores, _ := e.Catalog.CaaSCoresPerSocket(input.Operator)
	sharedPcores, _ := e.Catalog.SharedCoresPerSocket(input.Operator)
	caasVcores := caasPcores * 2
	sharedVcores := sharedPcores * 2

	var slots []models.SocketSlot
	for serverIdx, server := range input.ServerConfigs {
		if server.Sockets <= 0 {
			continue
		}
		perSocketTotal := float64(server.Vcores) / float64(server.Sockets)
		for socketIdx := 0; socketIdx < server.Sockets; socketIdx++ {
			available := perSocketTotal - caasVcores - sharedVcores
			if available < 0 {
				available = 0
			}
			slots = append(slots, models.SocketSlot{
				ServerIndex:     serverIdx,
				SocketIndex:     socketIdx,
				VcoresTotal:     perSocketTotal,
				VcoresCaaS:      caasVcores,
				VcoresShared:    sharedVcores,
				VcoresAvailable: available,
			})
		}
	}
	return slots
}
