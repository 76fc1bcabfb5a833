// ABOUTME: Declarative route table for the rule engine's API endpoints
// ABOUTME: Routes use /api/v1/ prefix throughout

package handlers

import "net/http"

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},
		{Method: http.MethodPost, Path: "/api/v1/validate", Handler: h.Validate},
		{Method: http.MethodGet, Path: "/api/v1/minimum-requirements", Handler: h.MinimumRequirements},
		{Method: http.MethodGet, Path: "/api/v1/catalog", Handler: h.CatalogSummary},
		{Method: http.MethodGet, Path: "/api/v1/openapi.yaml", Handler: h.OpenAPISpec},
	}
}
