// ABOUTME: Handler holds shared dependencies for the rule engine's HTTP API
// ABOUTME: writeJSON/writeError mirror the response shape every endpoint uses

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/asquaree/pod-placement-ai/cache"
	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/config"
	"github.com/asquaree/pod-placement-ai/models"
	"github.com/asquaree/pod-placement-ai/rules"
)

type Handler struct {
	cfg          *config.Config
	cache        *cache.Cache
	catalog      *catalog.RuleCatalog
	orchestrator *rules.Orchestrator
}

// NewHandler wires a Handler against the given config, cache, and catalog.
// cfg and cache may be nil in tests that only exercise route wiring.
func NewHandler(cfg *config.Config, cache *cache.Cache, ruleCatalog *catalog.RuleCatalog) *Handler {
	return &Handler{
		cfg:          cfg,
		cache:        cache,
		catalog:      ruleCatalog,
		orchestrator: rules.NewOrchestrator(ruleCatalog),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{Error: message, Code: code})
}
