// ABOUTME: CatalogSummary handler: exposes the loaded rule catalog's rule index
// ABOUTME: Read-only introspection, no mutation endpoint exists

package handlers

import "net/http"

// CatalogSummary handles GET /api/v1/catalog: returns every known rule ID
// grouped by category, and the catalog's allowed sockets-per-server counts.
func (h *Handler) CatalogSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.catalog == nil {
		h.writeError(w, "No rule catalog loaded", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]interface{}{
		"rules_by_category": h.catalog.Summary(),
		"allowed_socket_counts": h.catalog.AllowedSocketCounts(),
	}
	h.writeJSON(w, http.StatusOK, resp)
}
