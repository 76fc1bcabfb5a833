// ABOUTME: Tests for the validate command
// ABOUTME: Verifies exit codes and error handling for deployment files

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/asquaree/pod-placement-ai/models"
)

func baselineDeployment() models.DeploymentInput {
	return models.DeploymentInput{
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
	}
}

func writeDeploymentFile(t *testing.T, input models.DeploymentInput) string {
	t.Helper()
	data, err := json.Marshal(input)
	if err != nil {
		t.Fatalf("failed to marshal deployment: %v", err)
	}
	path := filepath.Join(t.TempDir(), "deployment.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write deployment file: %v", err)
	}
	return path
}

func TestRunValidate_SuccessExitsZero(t *testing.T) {
	catalogPath = ""
	strategyFlag = "balanced"
	generatePlan = false
	verifyIdempotent = false

	path := writeDeploymentFile(t, baselineDeployment())

	var buf bytes.Buffer
	exitCode := runValidate(context.Background(), path, &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
}

func TestRunValidate_MissingFileExitsTwo(t *testing.T) {
	catalogPath = ""

	var buf bytes.Buffer
	exitCode := runValidate(context.Background(), filepath.Join(t.TempDir(), "missing.json"), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
}

func TestRunValidate_InvalidJSONExitsTwo(t *testing.T) {
	catalogPath = ""
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	var buf bytes.Buffer
	exitCode := runValidate(context.Background(), path, &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
}

func TestRunValidate_ViolationExitsOne(t *testing.T) {
	catalogPath = ""
	strategyFlag = "balanced"

	input := baselineDeployment()
	input.ServerConfigs = []models.ServerConfiguration{{Pcores: 1, Vcores: 2, Sockets: 1}}
	path := writeDeploymentFile(t, input)

	var buf bytes.Buffer
	exitCode := runValidate(context.Background(), path, &buf)

	if exitCode != 1 {
		t.Errorf("expected exit code 1 for undersized server, got %d: %s", exitCode, buf.String())
	}
}
