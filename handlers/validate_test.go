package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asquaree/pod-placement-ai/models"
)

func baselineRequest() validateRequest {
	return validateRequest{
		Deployment: models.DeploymentInput{
			Operator:      models.VOS,
			VDUFlavorName: "medium-regular-spr-t23",
			ServerConfigs: []models.ServerConfiguration{{Pcores: 24, Vcores: 48, Sockets: 1}},
			PodRequirements: []models.PodRequirement{
				{Kind: models.DPP, Vcores: 2, Quantity: 1},
				{Kind: models.DIP, Vcores: 2, Quantity: 1},
				{Kind: models.RMP, Vcores: 2, Quantity: 1},
				{Kind: models.CMP, Vcores: 2, Quantity: 1},
				{Kind: models.DMP, Vcores: 2, Quantity: 1},
				{Kind: models.PMP, Vcores: 2, Quantity: 1},
			},
		},
		Options: validateOptions{GeneratePlan: true, Strategy: "balanced"},
	}
}

func TestValidate_SuccessReturnsResultAndReport(t *testing.T) {
	h := NewHandler(nil, nil, testCatalog(t))

	body, _ := json.Marshal(baselineRequest())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Validate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp validateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Result.Success {
		t.Errorf("Expected success, got violations: %+v", resp.Result.Violations)
	}
	if resp.Result.Plan == nil {
		t.Error("Expected a plan to be generated")
	}
}

func TestValidate_InvalidJSONReturns400(t *testing.T) {
	h := NewHandler(nil, nil, testCatalog(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	h.Validate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestValidate_WrongMethodReturns405(t *testing.T) {
	h := NewHandler(nil, nil, testCatalog(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/validate", nil)
	w := httptest.NewRecorder()

	h.Validate(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}
