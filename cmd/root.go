// ABOUTME: Root command for vducli
// ABOUTME: Handles global flags shared by every subcommand

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	catalogPath string
	jsonOutput  bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "vducli",
	Short: "CLI for the vDU Placement Rule Engine",
	Long: `vducli validates vDU deployments against the Deterministic Rule catalog
in-process, without a running backend service.

It enables CI/CD pipelines to check a deployment plan before it reaches a
live environment.

Environment Variables:
  VDU_CATALOG_PATH  Rule catalog JSON path (default: embedded default catalog)`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Rule catalog JSON path (overrides VDU_CATALOG_PATH)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetCatalogPath returns the catalog path from flag, env, or empty (embedded
// default) in priority order.
func GetCatalogPath() string {
	if catalogPath != "" {
		return catalogPath
	}
	return os.Getenv("VDU_CATALOG_PATH")
}

// IsJSONOutput returns whether JSON output is requested.
func IsJSONOutput() bool {
	return jsonOutput
}
