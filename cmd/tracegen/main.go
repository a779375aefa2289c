// Command tracegen writes a synthetic branch trace to stdout.
//
// Usage:
//
//	go run ./cmd/tracegen [flags] <workload>
//
// Flags:
//
//	-list  List available workloads
//
// Example:
//
//	go run ./cmd/tracegen loop | go run ./cmd/branchsim 2BG
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/branchsim/trace"
	"github.com/sarchlab/branchsim/workloads"
)

func main() {
	list := flag.Bool("list", false, "List available workloads")
	flag.Parse()

	if *list {
		for _, w := range workloads.GetWorkloads() {
			fmt.Printf("%-12s %s\n", w.Name, w.Description)
		}
		atexit.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: tracegen [options] <workload>\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	w, err := workloads.Get(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	if err := trace.Write(os.Stdout, w.Build()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
