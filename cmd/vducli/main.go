// ABOUTME: Entry point for vducli
// ABOUTME: Command-line tool for validating vDU deployments in CI/CD pipelines

package main

import (
	"fmt"
	"os"

	"github.com/asquaree/pod-placement-ai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
