// Package report formats simulation output.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/branchsim/predictor"
	"github.com/sarchlab/branchsim/sim"
)

// Bits renders the n least significant bits of value, most significant
// first.
func Bits(value uint32, n int) string {
	if n <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(n)
	for i := n - 1; i >= 0; i-- {
		if i < 32 && value&(1<<uint(i)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Writer prints the textual run report. It implements sim.Observer so it
// can print each branch as it is simulated.
//
// Write errors are sticky: after the first failure every call is a no-op
// and Err returns the failure.
type Writer struct {
	w   io.Writer
	err error

	// PerBranch enables the per-branch Predicted/Actual lines.
	PerBranch bool
	// ShowHistory appends the predictor's history register to each
	// per-branch block. The BTB line is printed whenever a target buffer
	// was consulted.
	ShowHistory bool
}

// NewWriter creates a report writer with per-branch output enabled.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, PerBranch: true}
}

// Err returns the first write error, if any.
func (r *Writer) Err() error {
	return r.err
}

func (r *Writer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// Parameters prints the Parameter Info block.
func (r *Writer) Parameters(kind predictor.Kind) {
	r.printf("Parameter Info\n")
	r.printf("==============\n")
	r.printf("Branch Predictor: %s\n", kind)
}

// Metadata prints the static branch list.
func (r *Writer) Metadata(metadata []predictor.Metadata) {
	r.printf("\n\nBranch Metadata\n")
	r.printf("===============\n")
	for _, m := range metadata {
		r.printf("Branch at 0x%x targets 0x%x\n", m.Address, m.Target)
	}
}

// Observe prints one simulated branch.
func (r *Writer) Observe(res sim.Result) {
	if !r.PerBranch {
		return
	}

	r.printf("Branch at 0x%x\n", res.Address)
	r.printf("  Predicted: %s\n", res.Predicted)
	r.printf("  Actual:    %s\n", res.Actual)
	if r.ShowHistory && res.HistoryWidth > 0 {
		r.printf("  History:   %s\n", Bits(res.History, res.HistoryWidth))
	}
	if res.TargetChecked {
		r.printf("  BTB:       %s\n", hitString(res.TargetHit))
	}
}

func hitString(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// Statistics prints the final counters. Target buffer lines are only
// printed when withTargets is set.
func (r *Writer) Statistics(stats sim.Stats, withTargets bool) {
	r.printf("\n\nStatistics\n")
	r.printf("==========\n")
	r.printf("OUTPUT PREDICTIONS %d\n", stats.Predictions)
	r.printf("OUTPUT CORRECT %d\n", stats.Correct)
	r.printf("OUTPUT INCORRECT %d\n", stats.Mispredictions)
	r.printf("OUTPUT BRANCH PREDICTION RATE %.8f\n", stats.Rate())
	if withTargets {
		r.printf("OUTPUT BTB HITS %d\n", stats.TargetHits)
		r.printf("OUTPUT BTB MISSES %d\n", stats.TargetMisses)
	}
}

// SummaryTable renders the statistics as a table.
func SummaryTable(w io.Writer, kind predictor.Kind, stats sim.Stats, withTargets bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Branch Predictor %s", kind))
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"Predictions", stats.Predictions})
	t.AppendRow(table.Row{"Correct", stats.Correct})
	t.AppendRow(table.Row{"Incorrect", stats.Mispredictions})
	t.AppendRow(table.Row{"Accuracy", fmt.Sprintf("%.2f%%", stats.Accuracy())})
	if withTargets {
		t.AppendSeparator()
		t.AppendRow(table.Row{"BTB Hits", stats.TargetHits})
		t.AppendRow(table.Row{"BTB Misses", stats.TargetMisses})
		t.AppendRow(table.Row{"BTB Hit Rate", fmt.Sprintf("%.2f%%", stats.TargetHitRate())})
	}
	t.Render()
}
