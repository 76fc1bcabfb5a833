// ABOUTME: MinimumRequirements: a side-channel preview of mandatory vcore demand
// ABOUTME: Supplemented from calculate_minimum_requirements in the retrieval pack's original source (SPEC_FULL.md §12)

package rules

import (
	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
)

// MinimumRequirementsReport previews the mandatory pod set and total vcore
// demand for an operator/flavor/flags combination, without a full
// DeploymentInput. It is not part of the validate() entry point; it exists
// so a caller (the CLI's `catalog show --flavor` command) can sanity-check
// before constructing one.
type MinimumRequirementsReport struct {
	MandatoryPods     []models.PodKind
	TotalVcores       float64
	IncludesVCU       bool
	IncludesVCSR      bool
}

// MinimumRequirements computes the report for op/flavor under flags, using
// the same resolver logic validate() uses internally but with no explicit
// pod requirements.
func MinimumRequirements(c *catalog.RuleCatalog, op models.Operator, vduFlavorName string, flags models.FeatureFlags) (MinimumRequirementsReport, error) {
	if !op.Valid() {
		return MinimumRequirementsReport{}, &invalidOperatorError{op: op}
	}

	input := models.DeploymentInput{
		Operator:      op,
		VDUFlavorName: vduFlavorName,
		FeatureFlags:  flags,
		ServerConfigs: []models.ServerConfiguration{{Pcores: 1, Vcores: 2, Sockets: 1}},
	}

	resolver := NewWorkloadResolver(c)
	workload := resolver.Resolve(input)

	report := MinimumRequirementsReport{}
	for _, pod := range workload.Pods {
		report.MandatoryPods = append(report.MandatoryPods, pod.Kind)
		report.TotalVcores += pod.Vcores * float64(pod.Quantity)
		if pod.Kind == models.VCU {
			report.IncludesVCU = true
		}
		if pod.Kind == models.VCSR {
			report.IncludesVCSR = true
		}
	}
	return report, nil
}

type invalidOperatorError struct {
	op models.Operator
}

func (e *invalidOperatorError) Error() string {
	return "unknown operator: " + string(e.op)
}
