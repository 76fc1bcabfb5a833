// ABOUTME: Health check handler reporting catalog load status
// ABOUTME: Used by orchestration probes; never touches the cache

package handlers

import "net/http"

// Health returns API health status including whether a rule catalog is loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":       "ok",
		"catalog_loaded": h.catalog != nil,
	}
	h.writeJSON(w, http.StatusOK, resp)
}
