// ABOUTME: ResponseFormatter: renders a ValidationResult into a human-readable report
// ABOUTME: Grounded on models.GenerateRecommendations' priority-ordered, resource-keyed structure

package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/asquaree/pod-placement-ai/models"
)

// Report is the rendered form of a ValidationResult: a verdict line, the
// violations grouped by category, a per-socket utilization table, and
// optimization hints (one per failing Capacity, Placement, or Operator
// category) when the deployment failed.
type Report struct {
	Verdict         string          `json:"verdict"`
	CategoryReports []CategoryReport `json:"category_reports,omitempty"`
	SocketUsage     []SocketUsageRow `json:"socket_usage"`
	Hints           []string        `json:"hints,omitempty"`
}

// CategoryReport groups violations under one Category for display.
type CategoryReport struct {
	Category   models.Category   `json:"category"`
	Violations []models.Violation `json:"violations"`
}

// SocketUsageRow is one line of the utilization table.
type SocketUsageRow struct {
	Server          int     `json:"server"`
	Socket          int     `json:"socket"`
	VcoresAvailable string  `json:"vcores_available"`
	UtilizationPct  float64 `json:"utilization_pct"`
}

// categoryOrder fixes the display order so the report reads in the same
// sequence the orchestrator evaluates rules: Validation issues surface
// first since they mean the rest of the run never happened (pre-pass), then
// Capacity, Placement, Operator.
var categoryOrder = []models.Category{
	models.CategoryValidation,
	models.CategoryCapacity,
	models.CategoryPlacement,
	models.CategoryOperator,
}

// Format renders a ValidationResult into a Report.
func Format(result models.ValidationResult) Report {
	report := Report{Verdict: result.Message}

	grouped := result.ViolationsByCategory()
	for _, cat := range categoryOrder {
		if vs, ok := grouped[cat]; ok {
			report.CategoryReports = append(report.CategoryReports, CategoryReport{Category: cat, Violations: vs})
		}
	}

	var keys []string
	for key := range result.Metrics.PerSocketUtilization {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		var server, socket int
		fmt.Sscanf(key, "%d:%d", &server, &socket)
		report.SocketUsage = append(report.SocketUsage, SocketUsageRow{
			Server:         server,
			Socket:         socket,
			UtilizationPct: result.Metrics.PerSocketUtilization[key],
		})
	}

	if !result.Success {
		report.Hints = buildHints(result)
	}

	return report
}

// buildHints offers one actionable suggestion per failing category,
// prioritized the way GenerateRecommendations prioritizes upgrade paths:
// the constraining resource first.
func buildHints(result models.ValidationResult) []string {
	var hints []string
	grouped := result.ViolationsByCategory()

	if vs, ok := grouped[models.CategoryCapacity]; ok && len(vs) > 0 {
		shortfall := result.Metrics.TotalDemandVcores - result.Metrics.TotalAvailableVcores
		if shortfall > 0 {
			hints = append(hints, fmt.Sprintf(
				"capacity short by %s vcores: add a server or a socket, or reduce pod replica counts",
				humanize.CommafWithDigits(shortfall, 1),
			))
		} else {
			hints = append(hints, "capacity violation reported with no aggregate shortfall: check per-pod vcore values")
		}
	}

	if vs, ok := grouped[models.CategoryPlacement]; ok && len(vs) > 0 {
		var details []string
		for _, v := range vs {
			details = append(details, v.RuleID)
		}
		hints = append(hints, fmt.Sprintf(
			"placement constraints unmet (%s): add sockets so co-located and anti-affine pods each have room",
			strings.Join(details, ", "),
		))
	}

	if vs, ok := grouped[models.CategoryOperator]; ok && len(vs) > 0 {
		hints = append(hints, fmt.Sprintf("%d operator-specific rule(s) failed: review the flavor and feature flags against the operator's catalog entry", len(vs)))
	}

	return hints
}

// String renders the report as the plain-text form a CLI would print.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Verdict)
	for _, cr := range r.CategoryReports {
		fmt.Fprintf(&b, "\n%s:\n", cr.Category)
		for _, v := range cr.Violations {
			fmt.Fprintf(&b, "  [%s] %s\n", v.RuleID, v.Detail)
		}
	}
	if len(r.SocketUsage) > 0 {
		b.WriteString("\nSocket utilization:\n")
		for _, row := range r.SocketUsage {
			fmt.Fprintf(&b, "  server %d socket %d: %.1f%%\n", row.Server, row.Socket, row.UtilizationPct)
		}
	}
	for _, h := range r.Hints {
		fmt.Fprintf(&b, "\nhint: %s\n", h)
	}
	return b.String()
}
