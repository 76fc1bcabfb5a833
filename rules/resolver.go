// ABOUTME: WorkloadResolver: normalizes a DeploymentInput into a ResolvedWorkload
// ABOUTME: Fixed resolution order per spec §4.2; explicit pod records dominate implicit injections

package rules

import (
	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
)

// WorkloadResolver expands a DeploymentInput's explicit pod requirements with
// catalog-driven mandatory, flavor-implicit, and flag-conditional pods.
type WorkloadResolver struct {
	Catalog *catalog.RuleCatalog
}

// NewWorkloadResolver constructs a resolver bound to the given catalog.
func NewWorkloadResolver(c *catalog.RuleCatalog) *WorkloadResolver {
	return &WorkloadResolver{Catalog: c}
}

// Resolve runs the fixed five-step resolution order from spec §4.2:
// explicit requirements, operator-mandatory pods, flavor-implicit pods,
// the flag-conditional vCU/vCSR pods, then co-location/anti-affinity tagging
// is left to the evaluators which read groups directly from the catalog.
func (r *WorkloadResolver) Resolve(input models.DeploymentInput) models.ResolvedWorkload {
	seen := map[models.PodKind]bool{}
	pods := make([]models.ResolvedPod, 0, len(input.PodRequirements)+4)

	for _, req := range input.PodRequirements {
		pods = append(pods, models.ResolvedPod{PodRequirement: req, Origin: models.OriginExplicit})
		seen[req.Kind] = true
	}

	mandatory, err := r.Catalog.MandatoryPods(input.Operator)
	if err == nil {
		for _, kind := range mandatory {
			if seen[kind] {
				continue
			}
			pods = append(pods, models.ResolvedPod{
				PodRequirement: models.PodRequirement{Kind: kind, Vcores: defaultMandatoryVcores(kind), Quantity: 1},
				Origin:         models.OriginOperatorMandatory,
			})
			seen[kind] = true
		}
	}

	for _, kind := range r.Catalog.ImplicitPodsForFlavor(input.VDUFlavorName) {
		if seen[kind] {
			continue
		}
		pods = append(pods, models.ResolvedPod{
			PodRequirement: models.PodRequirement{Kind: kind, Vcores: defaultMandatoryVcores(kind), Quantity: 1},
			Origin:         models.OriginFlavorImplicit,
		})
		seen[kind] = true
	}

	if input.FeatureFlags.VCUDeploymentRequired && !seen[models.VCU] {
		pods = append(pods, models.ResolvedPod{
			PodRequirement: models.PodRequirement{Kind: models.VCU, Vcores: r.Catalog.VCUVcores(input.VDUFlavorName), Quantity: 1},
			Origin:         models.OriginFlagConditional,
		})
		seen[models.VCU] = true
	}

	if input.FeatureFlags.VCSRDeploymentRequired && !seen[models.VCSR] {
		vcores, supported := r.Catalog.VCSRVcores(input.VDUFlavorName)
		if supported {
			pods = append(pods, models.ResolvedPod{
				PodRequirement: models.PodRequirement{Kind: models.VCSR, Vcores: vcores, Quantity: 1},
				Origin:         models.OriginFlagConditional,
			})
			seen[models.VCSR] = true
		}
	}

	return models.ResolvedWorkload{Input: input, Pods: pods}
}

// defaultMandatoryVcores returns the vcore cost used when the resolver
// injects a pod the caller did not specify explicitly. Values are grounded
// on deployment_validator._add_operator_specific_pods in the retrieval
// pack's original source.
func defaultMandatoryVcores(kind models.PodKind) float64 {
	switch kind {
	case models.IPP:
		return 4.0
	case models.IIP:
		return 4.0
	case models.UPP:
		return 2.0
	case models.CSP:
		return 2.0
	case models.DPP, models.DIP, models.RMP, models.CMP, models.DMP, models.PMP:
		return 2.0
	default:
		return 1.0
	}
}
