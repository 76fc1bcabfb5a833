// ABOUTME: DeploymentInput and ResolvedWorkload data models
// ABOUTME: DeploymentInput is the caller-supplied request; ResolvedWorkload is the resolver's output

package models

import "fmt"

// DeploymentInput is the raw request handed to the engine.
//
// Invariant: at least one server; total server vcores > 0.
type DeploymentInput struct {
	Operator        Operator              `json:"operator"`
	VDUFlavorName    string                `json:"vdu_flavor_name"`
	PodRequirements []PodRequirement       `json:"pod_requirements"`
	ServerConfigs   []ServerConfiguration `json:"server_configs"`
	FeatureFlags    FeatureFlags          `json:"feature_flags"`
}

// Validate checks the cheap, catalog-independent invariants on the input shape.
func (d DeploymentInput) Validate() error {
	if len(d.ServerConfigs) == 0 {
		return fmt.Errorf("deployment input: at least one server is required")
	}
	total := 0
	for _, s := range d.ServerConfigs {
		total += s.Vcores
	}
	if total <= 0 {
		return fmt.Errorf("deployment input: total server vcores must be > 0")
	}
	return nil
}

// TotalVcores returns the sum of raw vcores across all server configs.
func (d DeploymentInput) TotalVcores() int {
	total := 0
	for _, s := range d.ServerConfigs {
		total += s.Vcores
	}
	return total
}

// ResolvedPod is one pod instance after WorkloadResolver has run: an explicit
// or injected PodRequirement tagged with its origin and resolved groups.
type ResolvedPod struct {
	PodRequirement
	Origin PodOrigin `json:"origin"`
}

// InstanceKey is the deterministic identity of one unit of a ResolvedPod's
// quantity, used by the planner and by PlacementPlan lookups. Identifiers are
// derived from pod kind and index rather than randomly generated so that two
// validations of the same input produce byte-identical plans (property 5).
func (p ResolvedPod) InstanceKey(index int) string {
	return fmt.Sprintf("%s#%d", p.Kind, index)
}

// ResolvedWorkload is the DeploymentInput plus every pod injected by resolver
// rules (operator-mandatory, flavor-implicit, flag-conditional), each tagged
// with its origin for diagnostics.
type ResolvedWorkload struct {
	Input DeploymentInput `json:"input"`
	Pods  []ResolvedPod   `json:"pods"`
}

// ByKind returns the first ResolvedPod with the given kind, if any.
func (w ResolvedWorkload) ByKind(kind PodKind) (ResolvedPod, bool) {
	for _, p := range w.Pods {
		if p.Kind == kind {
			return p, true
		}
	}
	return ResolvedPod{}, false
}

// TotalDemandVcores returns Σ(pod.vcores * pod.quantity) across the workload.
func (w ResolvedWorkload) TotalDemandVcores() float64 {
	var total float64
	for _, p := range w.Pods {
		total += p.Vcores * float64(p.Quantity)
	}
	return total
}
