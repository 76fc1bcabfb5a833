// ABOUTME: Tests for DeploymentInput shape validation and ResolvedWorkload helpers
// ABOUTME: Verifies the at-least-one-server and positive-total-vcores invariants

package models

import "testing"

func TestDeploymentInput_Validate(t *testing.T) {
	noServers := DeploymentInput{Operator: VOS}
	if err := noServers.Validate(); err == nil {
		t.Error("expected error for empty server_configs, got nil")
	}

	ok := DeploymentInput{
		Operator:      VOS,
		ServerConfigs: []ServerConfiguration{{Pcores: 24, Vcores: 48, Sockets: 1}},
	}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeploymentInput_TotalVcores(t *testing.T) {
	d := DeploymentInput{
		ServerConfigs: []ServerConfiguration{
			{Pcores: 24, Vcores: 48, Sockets: 1},
			{Pcores: 12, Vcores: 24, Sockets: 1},
		},
	}
	if got := d.TotalVcores(); got != 72 {
		t.Errorf("TotalVcores() = %d, want 72", got)
	}
}

func TestResolvedWorkload_ByKind(t *testing.T) {
	w := ResolvedWorkload{
		Pods: []ResolvedPod{
			{PodRequirement: PodRequirement{Kind: DPP, Vcores: 2, Quantity: 1}, Origin: OriginExplicit},
			{PodRequirement: PodRequirement{Kind: IPP, Vcores: 4, Quantity: 1}, Origin: OriginOperatorMandatory},
		},
	}

	pod, ok := w.ByKind(IPP)
	if !ok {
		t.Fatal("expected to find IPP pod")
	}
	if pod.Origin != OriginOperatorMandatory {
		t.Errorf("IPP origin = %q, want %q", pod.Origin, OriginOperatorMandatory)
	}

	if _, ok := w.ByKind(CMP); ok {
		t.Error("expected CMP to be absent")
	}
}

func TestResolvedWorkload_TotalDemandVcores(t *testing.T) {
	w := ResolvedWorkload{
		Pods: []ResolvedPod{
			{PodRequirement: PodRequirement{Kind: DPP, Vcores: 2, Quantity: 2}},
			{PodRequirement: PodRequirement{Kind: CMP, Vcores: 1.5, Quantity: 2}},
		},
	}
	if got := w.TotalDemandVcores(); got != 7 {
		t.Errorf("TotalDemandVcores() = %v, want 7", got)
	}
}

func TestResolvedPod_InstanceKey(t *testing.T) {
	p := ResolvedPod{PodRequirement: PodRequirement{Kind: DPP}}
	if got := p.InstanceKey(0); got != "DPP#0" {
		t.Errorf("InstanceKey(0) = %q, want %q", got, "DPP#0")
	}
	if got := p.InstanceKey(1); got != "DPP#1" {
		t.Errorf("InstanceKey(1) = %q, want %q", got, "DPP#1")
	}
}
