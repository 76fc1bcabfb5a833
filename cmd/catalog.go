// ABOUTME: Catalog commands for vducli
// ABOUTME: Summarizes the loaded rule catalog and previews minimum requirements

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
	"github.com/asquaree/pod-placement-ai/rules"
)

var (
	minFlavor  string
	minOp      string
	minVCU     bool
	minVCSR    bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the loaded rule catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a summary of the loaded rule catalog",
	Long: `Load the rule catalog (embedded default, or the path given by --catalog /
VDU_CATALOG_PATH) and print a summary.

With --flavor and --operator, print the minimum vcore total and the number
of resolved pods for that operator/flavor/flag combination instead (the
full pod list is printed with --json).`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runCatalogShow(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var catalogDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the loaded rule catalog as JSON",
	Long:  `Load the rule catalog and print it back out as JSON, unchanged.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runCatalogDump(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogDumpCmd)

	catalogShowCmd.Flags().StringVar(&minFlavor, "flavor", "", "vDU flavor name to preview minimum requirements for")
	catalogShowCmd.Flags().StringVar(&minOp, "operator", string(models.VOS), "Operator to preview minimum requirements for")
	catalogShowCmd.Flags().BoolVar(&minVCU, "vcu-deployment-required", false, "Include a VCU pod in the preview")
	catalogShowCmd.Flags().BoolVar(&minVCSR, "vcsr-deployment-required", false, "Include a vCSR pod in the preview")
}

func runCatalogShow(w io.Writer) int {
	c, err := catalog.Load(GetCatalogPath())
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if minFlavor != "" {
		return runMinimumRequirements(c, w)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatCatalogJSON(c))
	} else {
		fmt.Fprintln(w, formatCatalogHuman(c))
	}
	return 0
}

func runMinimumRequirements(c *catalog.RuleCatalog, w io.Writer) int {
	flags := models.FeatureFlags{
		VCUDeploymentRequired:  minVCU,
		VCSRDeploymentRequired: minVCSR,
	}
	report, err := rules.MinimumRequirements(c, models.Operator(minOp), minFlavor, flags)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "Mandatory pods: %d\nTotal vcores:   %g\nIncludes VCU:   %t\nIncludes vCSR:  %t\n",
			len(report.MandatoryPods), report.TotalVcores, report.IncludesVCU, report.IncludesVCSR)
	}
	return 0
}

func runCatalogDump(w io.Writer) int {
	c, err := catalog.Load(GetCatalogPath())
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	data, err := c.ExportJSON(nil)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	fmt.Fprintln(w, string(data))
	return 0
}

func formatCatalogHuman(c *catalog.RuleCatalog) string {
	summary := c.Summary()
	categories := make([]models.Category, 0, len(summary))
	for category := range summary {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	out := "Rules by category:\n"
	for _, category := range categories {
		out += fmt.Sprintf("  %-12s %s\n", category, strings.Join(summary[category], ", "))
	}
	out += fmt.Sprintf("Allowed socket counts: %v\n", c.AllowedSocketCounts())
	return out
}

func formatCatalogJSON(c *catalog.RuleCatalog) string {
	output := map[string]interface{}{
		"rules_by_category":     c.Summary(),
		"allowed_socket_counts": c.AllowedSocketCounts(),
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
