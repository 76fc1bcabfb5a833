// ABOUTME: InputValidator: rules V1-V3
// ABOUTME: V3 runs as a pre-pass ahead of resolution; V1/V2 run as the final pass (spec §9 open question)

package rules

import (
	"fmt"

	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
)

// InputValidator evaluates V1-V3.
type InputValidator struct {
	Catalog *catalog.RuleCatalog
}

// NewInputValidator constructs an InputValidator bound to the given catalog.
func NewInputValidator(c *catalog.RuleCatalog) *InputValidator {
	return &InputValidator{Catalog: c}
}

// PrePass runs V3: inputs present and well-typed, operator/flavor/pod kinds
// known to the catalog, quantities >= 1, vcores > 0, server count >= 1. This
// runs before WorkloadResolver so resolution never sees malformed input.
func (v *InputValidator) PrePass(input models.DeploymentInput) []models.Violation {
	var violations []models.Violation

	if !input.Operator.Valid() {
		violations = append(violations, models.Violation{
			RuleID: "V3", Category: models.CategoryValidation,
			Detail: fmt.Sprintf("unknown operator %q", input.Operator),
		})
	}

	if len(input.ServerConfigs) == 0 {
		violations = append(violations, models.Violation{
			RuleID: "V3", Category: models.CategoryValidation,
			Detail: "at least one server configuration is required",
		})
	}

	if !v.Catalog.IsKnownFlavor(input.VDUFlavorName) {
		violations = append(violations, models.Violation{
			RuleID: "V3", Category: models.CategoryValidation,
			Detail: fmt.Sprintf("unknown vdu_flavor_name %q", input.VDUFlavorName),
		})
	}

	for i, req := range input.PodRequirements {
		if !req.Kind.Valid() {
			violations = append(violations, models.Violation{
				RuleID: "V3", Category: models.CategoryValidation,
				Detail: fmt.Sprintf("pod_requirements[%d]: unknown pod kind %q", i, req.Kind),
			})
			continue
		}
		if err := req.Validate(); err != nil {
			violations = append(violations, models.Violation{
				RuleID: "V3", Category: models.CategoryValidation,
				Detail: fmt.Sprintf("pod_requirements[%d]: %v", i, err),
			})
		}
	}

	return violations
}

// FinalPass runs V2: per-server constraints (sockets in {1,2};
// pcores_per_socket divides evenly). V1, the summary pass, is not a
// rule that can itself fail — it is Summarize below, which the
// orchestrator calls once every stage has run.
func (v *InputValidator) FinalPass(input models.DeploymentInput) []models.Violation {
	var violations []models.Violation

	for i, server := range input.ServerConfigs {
		if err := server.Validate(); err != nil {
			violations = append(violations, models.Violation{
				RuleID: "V2", Category: models.CategoryValidation,
				Detail: fmt.Sprintf("server_configs[%d]: %v", i, err),
			})
		}
	}

	return violations
}

// Summarize implements V1: if prior stages produced no violations, the
// deployment succeeds; otherwise the message reports the violation count
// by category.
func (v *InputValidator) Summarize(violations []models.Violation) (success bool, message string) {
	if len(violations) == 0 {
		return true, "SUCCESS"
	}
	counts := map[models.Category]int{}
	for _, vi := range violations {
		counts[vi.Category]++
	}
	return false, fmt.Sprintf(
		"FAILED: %d Capacity, %d Placement, %d Operator, %d Validation violation(s)",
		counts[models.CategoryCapacity], counts[models.CategoryPlacement],
		counts[models.CategoryOperator], counts[models.CategoryValidation],
	)
}
