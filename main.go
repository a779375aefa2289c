// Package main provides the entry point for branchsim.
// branchsim is a trace-driven branch direction predictor simulator.
//
// For the full CLI, use: go run ./cmd/branchsim
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/branchsim/predictor"
)

func main() {
	fmt.Println("branchsim - Branch Predictor Simulator")
	fmt.Println("")
	fmt.Println("Usage: branchsim [options] <predictor> < trace.txt")
	fmt.Println("")
	fmt.Println("Predictors:")
	for _, k := range predictor.Kinds() {
		fmt.Printf("  %s\n", k)
	}
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/branchsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/branchsim' instead.")
	}
}
