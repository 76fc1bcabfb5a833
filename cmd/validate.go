// ABOUTME: Validate command for vducli
// ABOUTME: Runs a deployment file through the rule engine and exits non-zero on violation

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
	"github.com/asquaree/pod-placement-ai/rules"
)

var (
	generatePlan     bool
	strategyFlag     string
	verifyIdempotent bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [deployment.json]",
	Short: "Validate a deployment against the rule catalog",
	Long: `Validate a deployment file against the Deterministic Rule catalog and,
optionally, generate a placement plan.

Exit codes:
  0 - Deployment passed every rule
  1 - One or more rules failed
  2 - Error (file not found, invalid JSON, catalog load failure)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runValidate(ctx, args[0], os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&generatePlan, "generate-plan", false, "Generate a placement plan on success")
	validateCmd.Flags().StringVar(&strategyFlag, "strategy", "balanced", "Placement strategy: first-fit, best-fit, worst-fit, balanced")
	validateCmd.Flags().BoolVar(&verifyIdempotent, "verify-idempotent", false, "Run validation twice and fail if the results differ")
}

func runValidate(ctx context.Context, path string, w io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	var input models.DeploymentInput
	if err := json.Unmarshal(data, &input); err != nil {
		fmt.Fprintf(w, "Error: invalid deployment JSON: %v\n", err)
		return 2
	}

	c, err := catalog.Load(GetCatalogPath())
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	orchestrator := rules.NewOrchestrator(c)
	result := orchestrator.Validate(input, rules.Options{
		GeneratePlan:     generatePlan,
		Strategy:         models.PlacementStrategy(strategyFlag),
		VerifyIdempotent: verifyIdempotent,
	})

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, rules.Format(result).String())
	}

	if !result.Success {
		return 1
	}
	return 0
}
