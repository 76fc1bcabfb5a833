// ABOUTME: ValidationOrchestrator: the engine's top-level entry point
// ABOUTME: Runs the fixed stage order V3 -> C1-C4 -> M1-M4 -> O1-O5 -> V1-V2, planning only on success

package rules

import (
	"github.com/mitchellh/hashstructure/v2"

	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
)

// Stage names the ValidationOrchestrator's state machine positions (spec §4.8).
type Stage string

const (
	StageReceived         Stage = "Received"
	StageInputValidated   Stage = "InputValidated"
	StageWorkloadResolved Stage = "WorkloadResolved"
	StageCapacityChecked  Stage = "CapacityChecked"
	StagePlacementChecked Stage = "PlacementChecked"
	StageOperatorChecked  Stage = "OperatorChecked"
	StageFinalized        Stage = "Finalized"
)

// Options controls optional orchestrator behavior.
type Options struct {
	GeneratePlan     bool
	Strategy         models.PlacementStrategy
	VerifyIdempotent bool
}

// Orchestrator is the engine's single entry point: validate(deployment, options) -> ValidationResult.
type Orchestrator struct {
	Catalog   *catalog.RuleCatalog
	resolver  *WorkloadResolver
	capacity  *CapacityEvaluator
	placement *PlacementEvaluator
	operator  *OperatorEvaluator
	input     *InputValidator
	planner   *PlacementPlanner
}

// NewOrchestrator wires every evaluator stage against the given catalog.
func NewOrchestrator(c *catalog.RuleCatalog) *Orchestrator {
	return &Orchestrator{
		Catalog:   c,
		resolver:  NewWorkloadResolver(c),
		capacity:  NewCapacityEvaluator(c),
		placement: NewPlacementEvaluator(c),
		operator:  NewOperatorEvaluator(c),
		input:     NewInputValidator(c),
		planner:   NewPlacementPlanner(c),
	}
}

// Validate runs the full pipeline. It never returns a Go error for rule
// failures (spec §7) — only the programming-error case of a nil catalog
// would panic, which cannot happen through NewOrchestrator.
func (o *Orchestrator) Validate(input models.DeploymentInput, options Options) models.ValidationResult {
	result := o.validateOnce(input, options)

	if options.VerifyIdempotent {
		replay := o.validateOnce(input, options)
		h1, err1 := hashstructure.Hash(result, hashstructure.FormatV2, nil)
		h2, err2 := hashstructure.Hash(replay, hashstructure.FormatV2, nil)
		if err1 == nil && err2 == nil && h1 != h2 {
			result.Violations = append(result.Violations, models.Violation{
				RuleID:   "IDEMPOTENCE",
				Category: models.CategoryValidation,
				Detail:   "validating the same input twice produced different results",
			})
			result.Success = false
		}
	}

	return result
}

// validateOnce advances through StageReceived..StageFinalized, stopping at
// the first stage producing a violation (spec §4.8); stage values are not
// tracked as local state since the early returns already encode them.
func (o *Orchestrator) validateOnce(input models.DeploymentInput, options Options) models.ValidationResult {
	preViolations := o.input.PrePass(input)
	if len(preViolations) > 0 {
		return o.finalize(preViolations, nil, models.Metrics{})
	}

	workload := o.resolver.Resolve(input)

	slots, capViolations := o.capacity.Evaluate(workload)
	metrics := o.computeMetrics(workload, slots)
	if len(capViolations) > 0 {
		return o.finalize(capViolations, nil, metrics)
	}

	placementViolations := o.placement.Evaluate(workload, slots)
	if len(placementViolations) > 0 {
		return o.finalize(placementViolations, nil, metrics)
	}

	operatorViolations := o.operator.Evaluate(workload, slots)
	if len(operatorViolations) > 0 {
		return o.finalize(operatorViolations, nil, metrics)
	}

	finalViolations := o.input.FinalPass(input)
	if len(finalViolations) > 0 {
		return o.finalize(finalViolations, nil, metrics)
	}

	if !options.GeneratePlan {
		return o.finalize(nil, nil, metrics)
	}

	strategy := options.Strategy
	if strategy == "" {
		strategy = models.StrategyBalanced
	}
	plan, planViolations := o.planner.Plan(workload, slots, strategy)
	if len(planViolations) > 0 {
		return o.finalize(planViolations, nil, metrics)
	}
	return o.finalize(nil, &plan, metrics)
}

func (o *Orchestrator) finalize(violations []models.Violation, plan *models.PlacementPlan, metrics models.Metrics) models.ValidationResult {
	success, message := o.input.Summarize(violations)
	return models.ValidationResult{
		Success:    success,
		Message:    message,
		Violations: violations,
		Plan:       plan,
		Metrics:    metrics,
	}
}

func (o *Orchestrator) computeMetrics(w models.ResolvedWorkload, slots []models.SocketSlot) models.Metrics {
	demand := w.TotalDemandVcores()
	var supply, available float64
	perSocket := map[string]float64{}
	for _, s := range slots {
		supply += s.VcoresTotal
		available += s.VcoresAvailable
		if s.VcoresTotal > 0 {
			perSocket[s.Key()] = (s.VcoresTotal - s.VcoresAvailable) / s.VcoresTotal * 100
		}
	}
	return models.Metrics{
		TotalDemandVcores:    demand,
		TotalSupplyVcores:    supply,
		TotalAvailableVcores: available,
		PerSocketUtilization: perSocket,
	}
}
