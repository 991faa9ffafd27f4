// Package main is the entry point for bdt, the terminal usage and billing dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/j-veylop/billing-dashboard-tui/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
