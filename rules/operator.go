// ABOUTME: OperatorEvaluator: rules O1-O5, operator- and flavor-specific requirements
// ABOUTME: O5 (vCSR) is a supplemented rule not present in spec.md; see SPEC_FULL.md §12

package rules

import (
	"fmt"

	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
)

// OperatorEvaluator evaluates O1-O5 against a resolved workload and slot table.
type OperatorEvaluator struct {
	Catalog *catalog.RuleCatalog
}

// NewOperatorEvaluator constructs an OperatorEvaluator bound to the given catalog.
func NewOperatorEvaluator(c *catalog.RuleCatalog) *OperatorEvaluator {
	return &OperatorEvaluator{Catalog: c}
}

// Evaluate runs O1-O5.
func (e *OperatorEvaluator) Evaluate(w models.ResolvedWorkload, slots []models.SocketSlot) []models.Violation {
	var violations []models.Violation

	mandatory, err := e.Catalog.MandatoryPods(w.Input.Operator)
	if err != nil {
		violations = append(violations, models.Violation{
			RuleID:   "O1",
			Category: models.CategoryOperator,
			Detail:   err.Error(),
		})
	} else {
		for _, kind := range mandatory {
			if _, ok := w.ByKind(kind); !ok {
				violations = append(violations, models.Violation{
					RuleID:   "O1",
					Category: models.CategoryOperator,
					Detail:   fmt.Sprintf("operator %s requires pod %s, which is missing", w.Input.Operator, kind),
				})
			}
		}
	}

	if w.Input.FeatureFlags.VCUDeploymentRequired {
		pod, ok := w.ByKind(models.VCU)
		want := e.Catalog.VCUVcores(w.Input.VDUFlavorName)
		if !ok {
			violations = append(violations, models.Violation{
				RuleID:   "O2",
				Category: models.CategoryOperator,
				Detail:   "vcu_deployment_required is set but no vCU pod is present",
			})
		} else if pod.Vcores != want {
			violations = append(violations, models.Violation{
				RuleID:   "O2",
				Category: models.CategoryOperator,
				Detail:   fmt.Sprintf("vCU pod vcores=%.1f does not match catalog value %.1f for flavor %q", pod.Vcores, want, w.Input.VDUFlavorName),
			})
		}
	}

	if e.Catalog.IsSpecialFlavor(w.Input.VDUFlavorName) {
		if _, ok := w.ByKind(models.IIP); !ok {
			violations = append(violations, models.Violation{
				RuleID:   "O3",
				Category: models.CategoryOperator,
				Detail:   fmt.Sprintf("flavor %q is special and requires IIP, which is missing", w.Input.VDUFlavorName),
			})
		}
	}

	if w.Input.FeatureFlags.DirectX2Required {
		groups := e.Catalog.CoLocationGroups(w.Input.FeatureFlags, w.Input.Operator)
		for tag, kinds := range groups {
			if v := e.checkCoLocationCapacity(w, slots, tag, kinds); v != nil {
				violations = append(violations, *v)
			}
		}
	}

	if w.Input.FeatureFlags.VCSRDeploymentRequired {
		vcores, supported := e.Catalog.VCSRVcores(w.Input.VDUFlavorName)
		if supported {
			pod, ok := w.ByKind(models.VCSR)
			if !ok {
				violations = append(violations, models.Violation{
					RuleID:   "O5",
					Category: models.CategoryOperator,
					Detail:   "vcsr_deployment_required is set but no vCSR pod is present",
				})
			} else if pod.Vcores != vcores {
				violations = append(violations, models.Violation{
					RuleID:   "O5",
					Category: models.CategoryOperator,
					Detail:   fmt.Sprintf("vCSR pod vcores=%.1f does not match catalog value %.1f for flavor %q", pod.Vcores, vcores, w.Input.VDUFlavorName),
				})
			}
		}
		// vCSR unsupported for this flavor is not an error; the resolver
		// simply omits the pod (original source's explicit non-error path).
	}

	return violations
}

// checkCoLocationCapacity is a feasibility pre-check mirroring
// validate_rmp_dpp_co_location_capacity from the retrieval pack's original
// source: does any single socket have enough combined capacity for the
// group's total vcore demand? Actual atomic placement happens in
// PlacementPlanner; this only rules out groups that can never fit anywhere.
func (e *OperatorEvaluator) checkCoLocationCapacity(w models.ResolvedWorkload, slots []models.SocketSlot, tag string, kinds []models.PodKind) *models.Violation {
	var total float64
	for _, kind := range kinds {
		if pod, ok := w.ByKind(kind); ok {
			total += pod.Vcores * float64(pod.Quantity)
		}
	}
	if total == 0 {
		return nil
	}
	for _, slot := range slots {
		if slot.VcoresAvailable >= total {
			return nil
		}
	}
	return &models.Violation{
		RuleID:   "O4",
		Category: models.CategoryOperator,
		Detail:   fmt.Sprintf("co-location group %q needs %.1f combined vcores but no single socket has that much available", tag, total),
	}
}
