package workloads_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/branchsim/predictor"
	"github.com/sarchlab/branchsim/sim"
	"github.com/sarchlab/branchsim/trace"
	"github.com/sarchlab/branchsim/workloads"
)

func run(kind predictor.Kind, t *trace.Trace) sim.Stats {
	p, err := predictor.New(kind, t.Metadata)
	Expect(err).NotTo(HaveOccurred())

	stats, err := sim.NewSimulator(p).Run(context.Background(), t.Source())
	Expect(err).NotTo(HaveOccurred())
	return stats
}

var _ = Describe("Workloads", func() {
	It("should list and look up every workload", func() {
		Expect(workloads.Names()).To(HaveLen(len(workloads.GetWorkloads())))
		for _, name := range workloads.Names() {
			w, err := workloads.Get(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Build().Records).NotTo(BeEmpty())
		}

		_, err := workloads.Get("nope")
		Expect(err).To(HaveOccurred())
	})

	It("should run every predictor over every workload", func() {
		for _, w := range workloads.GetWorkloads() {
			t := w.Build()
			for _, k := range predictor.Kinds() {
				stats := run(k, t)
				Expect(stats.Predictions).To(Equal(uint64(len(t.Records))), "%s on %s", k, w.Name)
			}
		}
	})

	Describe("Loop", func() {
		It("should record iterations times runs executions", func() {
			t := workloads.Loop(10, 3)
			Expect(t.Records).To(HaveLen(30))
			Expect(t.Metadata).To(HaveLen(1))
		})

		It("should score always-taken and BTFNT identically", func() {
			t := workloads.Loop(10, 20)
			at := run(predictor.KindAlwaysTaken, t)
			btfnt := run(predictor.KindBTFNT, t)
			Expect(at.Correct).To(Equal(uint64(180)))
			Expect(btfnt.Correct).To(Equal(at.Correct))
			Expect(run(predictor.KindAlwaysNotTaken, t).Correct).To(Equal(uint64(20)))
		})
	})

	Describe("Alternating", func() {
		It("should be learned by the global history predictor", func() {
			t := workloads.Alternating(200)
			stats := run(predictor.KindLastGlobal, t)
			// Only the warm-up of the history register mispredicts.
			Expect(stats.Mispredictions).To(BeNumerically("<=", 6))
		})

		It("should defeat the static predictors", func() {
			t := workloads.Alternating(200)
			Expect(run(predictor.KindAlwaysTaken, t).Rate()).To(Equal(0.5))
			Expect(run(predictor.KindBTFNT, t).Rate()).To(Equal(0.5))
		})
	})

	Describe("Biased", func() {
		It("should be deterministic for a seed", func() {
			Expect(workloads.Biased(3, 100, 0.5)).To(Equal(workloads.Biased(3, 100, 0.5)))
		})

		It("should favor counters over the static not-taken guess", func() {
			t := workloads.Biased(1, 1000, 0.8)
			Expect(run(predictor.KindTwoBitLocal, t).Correct).To(
				BeNumerically(">", run(predictor.KindAlwaysNotTaken, t).Correct))
		})
	})

	It("should declare every executed branch", func() {
		for _, w := range workloads.GetWorkloads() {
			t := w.Build()
			declared := map[uint32]bool{}
			for _, m := range t.Metadata {
				declared[m.Address] = true
			}
			for _, r := range t.Records {
				Expect(declared).To(HaveKey(r.Address), w.Name)
			}
		}
	})
})
