// ABOUTME: MinimumRequirements handler: a cached preview of mandatory pod demand
// ABOUTME: Caches by operator+flavor+flags key, mirroring the teacher's dashboard cache pattern

package handlers

import (
	"fmt"
	"net/http"

	"github.com/asquaree/pod-placement-ai/models"
	"github.com/asquaree/pod-placement-ai/rules"
)

// MinimumRequirements handles GET /api/v1/minimum-requirements?operator=&flavor=&vcu_deployment_required=&vcsr_deployment_required=
func (h *Handler) MinimumRequirements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	op := models.Operator(r.URL.Query().Get("operator"))
	flavor := r.URL.Query().Get("flavor")
	flags := models.FeatureFlags{
		VCUDeploymentRequired:  r.URL.Query().Get("vcu_deployment_required") == "true",
		VCSRDeploymentRequired: r.URL.Query().Get("vcsr_deployment_required") == "true",
	}

	cacheKey := fmt.Sprintf("minimum:%s:%s:%v:%v", op, flavor, flags.VCUDeploymentRequired, flags.VCSRDeploymentRequired)
	if h.cache != nil {
		if cached, found := h.cache.Get(cacheKey); found {
			h.writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	report, err := rules.MinimumRequirements(h.catalog, op, flavor, flags)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.cache != nil {
		h.cache.Set(cacheKey, report)
	}
	h.writeJSON(w, http.StatusOK, report)
}
