// Package workloads provides synthetic branch traces with known behavior.
package workloads

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sarchlab/branchsim/predictor"
	"github.com/sarchlab/branchsim/trace"
)

// Workload is a named synthetic trace generator.
type Workload struct {
	Name        string
	Description string
	Build       func() *trace.Trace
}

// GetWorkloads returns the standard set of workloads.
// Each workload targets a specific predictor behavior.
func GetWorkloads() []Workload {
	return []Workload{
		loopWorkload(),
		nestedLoopWorkload(),
		alternatingWorkload(),
		ifElseWorkload(),
		biasedWorkload(),
	}
}

// Get returns the workload with the given name.
func Get(name string) (Workload, error) {
	for _, w := range GetWorkloads() {
		if w.Name == name {
			return w, nil
		}
	}
	return Workload{}, fmt.Errorf("unknown workload %q", name)
}

// Names returns the workload names in sorted order.
func Names() []string {
	ws := GetWorkloads()
	names := make([]string, 0, len(ws))
	for _, w := range ws {
		names = append(names, w.Name)
	}
	sort.Strings(names)
	return names
}

// builder accumulates a trace.
type builder struct {
	t    *trace.Trace
	seen map[uint32]bool
}

func newBuilder() *builder {
	return &builder{t: &trace.Trace{}, seen: make(map[uint32]bool)}
}

// branch declares a static branch.
func (b *builder) branch(addr, target uint32) {
	if b.seen[addr] {
		return
	}
	b.seen[addr] = true
	b.t.Metadata = append(b.t.Metadata, predictor.Metadata{Address: addr, Target: target})
}

// exec appends a dynamic record.
func (b *builder) exec(addr uint32, taken bool) {
	b.t.Records = append(b.t.Records, trace.Record{
		Address: addr,
		Actual:  predictor.DirectionOf(taken),
	})
}

// Loop builds a counted loop: a backward branch at addr taken iterations-1
// times then falling through, repeated runs times.
func Loop(iterations, runs int) *trace.Trace {
	const (
		addr   uint32 = 0x400520
		target uint32 = 0x400500
	)

	b := newBuilder()
	b.branch(addr, target)
	for r := 0; r < runs; r++ {
		for i := 0; i < iterations; i++ {
			b.exec(addr, i < iterations-1)
		}
	}
	return b.t
}

// NestedLoop builds an inner loop of inner iterations inside an outer loop
// of outer iterations.
func NestedLoop(outer, inner int) *trace.Trace {
	const (
		innerAddr   uint32 = 0x400614
		innerTarget uint32 = 0x400608
		outerAddr   uint32 = 0x40061c
		outerTarget uint32 = 0x400600
	)

	b := newBuilder()
	b.branch(innerAddr, innerTarget)
	b.branch(outerAddr, outerTarget)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			b.exec(innerAddr, i < inner-1)
		}
		b.exec(outerAddr, o < outer-1)
	}
	return b.t
}

// Alternating builds a single forward branch that flips every execution,
// starting taken.
func Alternating(n int) *trace.Trace {
	const (
		addr   uint32 = 0x400704
		target uint32 = 0x400710
	)

	b := newBuilder()
	b.branch(addr, target)
	for i := 0; i < n; i++ {
		b.exec(addr, i%2 == 0)
	}
	return b.t
}

// IfElse builds a chain of forward branches whose outcomes depend on a
// repeating 3-bit counter, giving correlated history.
func IfElse(n int) *trace.Trace {
	addrs := []uint32{0x400801, 0x400812, 0x400823}

	b := newBuilder()
	for _, a := range addrs {
		b.branch(a, a+0x20)
	}
	for i := 0; i < n; i++ {
		v := i % 8
		for bit, a := range addrs {
			b.exec(a, v&(1<<bit) != 0)
		}
	}
	return b.t
}

// Biased builds a random trace over a handful of branches, each taken with
// probability p. The same seed always yields the same trace.
func Biased(seed int64, n int, p float64) *trace.Trace {
	rng := rand.New(rand.NewSource(seed))
	addrs := []uint32{0x400900, 0x400934, 0x400968, 0x40099c}

	b := newBuilder()
	for i, a := range addrs {
		// Alternate backward and forward targets.
		if i%2 == 0 {
			b.branch(a, a-0x40)
		} else {
			b.branch(a, a+0x40)
		}
	}
	for i := 0; i < n; i++ {
		a := addrs[rng.Intn(len(addrs))]
		b.exec(a, rng.Float64() < p)
	}
	return b.t
}

func loopWorkload() Workload {
	return Workload{
		Name:        "loop",
		Description: "10-iteration loop run 20 times - favors backward-taken",
		Build:       func() *trace.Trace { return Loop(10, 20) },
	}
}

func nestedLoopWorkload() Workload {
	return Workload{
		Name:        "nested_loop",
		Description: "8x4 nested loops - exercises per-branch history",
		Build:       func() *trace.Trace { return NestedLoop(8, 4) },
	}
}

func alternatingWorkload() Workload {
	return Workload{
		Name:        "alternating",
		Description: "single branch flipping every execution - defeats static and counter-only schemes",
		Build:       func() *trace.Trace { return Alternating(200) },
	}
}

func ifElseWorkload() Workload {
	return Workload{
		Name:        "if_else",
		Description: "three correlated forward branches driven by a counter",
		Build:       func() *trace.Trace { return IfElse(64) },
	}
}

func biasedWorkload() Workload {
	return Workload{
		Name:        "biased",
		Description: "four branches taken 80% of the time at random",
		Build:       func() *trace.Trace { return Biased(1, 1000, 0.8) },
	}
}
