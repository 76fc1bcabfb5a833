// ABOUTME: Validate handler: the HTTP entry point to the deterministic rule engine
// ABOUTME: Decodes a validateRequest, runs the orchestrator, and renders a Report alongside the raw result

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/asquaree/pod-placement-ai/models"
	"github.com/asquaree/pod-placement-ai/rules"
)

type validateRequest struct {
	Deployment models.DeploymentInput `json:"deployment"`
	Options    validateOptions        `json:"options"`
}

type validateOptions struct {
	GeneratePlan     bool   `json:"generate_plan"`
	Strategy         string `json:"strategy"`
	VerifyIdempotent bool   `json:"verify_idempotent"`
}

type validateResponse struct {
	Result models.ValidationResult `json:"result"`
	Report rules.Report            `json:"report"`
}

// Validate handles POST /api/v1/validate: runs the full Deterministic Rule
// pipeline against the request body and returns both the raw ValidationResult
// and its rendered Report.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	strategy := models.PlacementStrategy(req.Options.Strategy)
	if strategy == "" {
		strategy = models.StrategyBalanced
		if h.cfg != nil && h.cfg.Strategy != "" {
			strategy = models.PlacementStrategy(h.cfg.Strategy)
		}
	}

	result := h.orchestrator.Validate(req.Deployment, rules.Options{
		GeneratePlan:     req.Options.GeneratePlan,
		Strategy:         strategy,
		VerifyIdempotent: req.Options.VerifyIdempotent,
	})

	h.writeJSON(w, http.StatusOK, validateResponse{
		Result: result,
		Report: rules.Format(result),
	})
}
