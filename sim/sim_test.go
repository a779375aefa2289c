package sim_test

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/branchsim/btb"
	"github.com/sarchlab/branchsim/predictor"
	"github.com/sarchlab/branchsim/sim"
	"github.com/sarchlab/branchsim/trace"
)

func uniformTrace(n int, actual predictor.Direction) *trace.Trace {
	t := &trace.Trace{}
	for i := 0; i < n; i++ {
		t.Records = append(t.Records, trace.Record{
			Address: uint32(0x400000 + 4*i),
			Actual:  actual,
		})
	}
	return t
}

var _ = Describe("Simulator", func() {
	var (
		mockCtrl *gomock.Controller
		mockPred *MockPredictor
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockPred = NewMockPredictor(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should predict before updating each record", func() {
		gomock.InOrder(
			mockPred.EXPECT().Predict(uint32(0x10)).Return(predictor.Taken, nil),
			mockPred.EXPECT().Update(uint32(0x10), predictor.NotTaken).Return(nil),
			mockPred.EXPECT().Predict(uint32(0x20)).Return(predictor.NotTaken, nil),
			mockPred.EXPECT().Update(uint32(0x20), predictor.NotTaken).Return(nil),
		)

		s := sim.NewSimulator(mockPred)
		t := &trace.Trace{Records: []trace.Record{
			{Address: 0x10, Actual: predictor.NotTaken},
			{Address: 0x20, Actual: predictor.NotTaken},
		}}

		stats, err := s.Run(context.Background(), t.Source())
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Predictions).To(Equal(uint64(2)))
		Expect(stats.Correct).To(Equal(uint64(1)))
		Expect(stats.Mispredictions).To(Equal(uint64(1)))
	})

	It("should surface prediction errors without updating", func() {
		lookupErr := errors.New("boom")
		mockPred.EXPECT().Predict(uint32(0x10)).Return(predictor.NotTaken, lookupErr)

		s := sim.NewSimulator(mockPred)
		_, err := s.Step(trace.Record{Address: 0x10, Actual: predictor.Taken})
		Expect(err).To(MatchError(lookupErr))
		Expect(err.Error()).To(ContainSubstring("0x10"))
		Expect(s.Stats()).To(Equal(sim.Stats{}))
	})

	It("should surface update errors", func() {
		updateErr := errors.New("bad update")
		mockPred.EXPECT().Predict(gomock.Any()).Return(predictor.Taken, nil)
		mockPred.EXPECT().Update(gomock.Any(), gomock.Any()).Return(updateErr)

		buf, err := btb.New(btb.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		s := sim.NewSimulator(mockPred, sim.WithTargetBuffer(buf))
		_, err = s.Step(trace.Record{Address: 0x10, Actual: predictor.Taken})
		Expect(err).To(MatchError(updateErr))
		Expect(s.Stats()).To(Equal(sim.Stats{}))
		Expect(buf.Stats()).To(Equal(btb.Statistics{}))
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := sim.NewSimulator(mockPred)
		_, err := s.Run(ctx, uniformTrace(3, predictor.Taken).Source())
		Expect(err).To(MatchError(context.Canceled))
	})

	Describe("end to end", func() {
		It("should score always-taken on an all-taken trace", func() {
			s := sim.NewSimulator(predictor.AlwaysTaken{})
			stats, err := s.Run(context.Background(), uniformTrace(5, predictor.Taken).Source())
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Predictions).To(Equal(uint64(5)))
			Expect(stats.Correct).To(Equal(uint64(5)))
			Expect(stats.Rate()).To(Equal(1.0))
		})

		It("should score always-taken on an all-not-taken trace", func() {
			s := sim.NewSimulator(predictor.AlwaysTaken{})
			stats, err := s.Run(context.Background(), uniformTrace(5, predictor.NotTaken).Source())
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Predictions).To(Equal(uint64(5)))
			Expect(stats.Correct).To(Equal(uint64(0)))
			Expect(stats.Rate()).To(Equal(0.0))
		})

		It("should report a zero rate for an empty trace", func() {
			s := sim.NewSimulator(predictor.AlwaysTaken{})
			stats, err := s.Run(context.Background(), uniformTrace(0, predictor.Taken).Source())
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Rate()).To(Equal(0.0))
		})

		It("should stop at an unknown BTFNT branch", func() {
			p := predictor.NewBTFNT([]predictor.Metadata{{Address: 0x400000, Target: 0x3ffff0}})
			s := sim.NewSimulator(p)
			stats, err := s.Run(context.Background(), uniformTrace(3, predictor.Taken).Source())
			Expect(err).To(MatchError(predictor.ErrUnknownBranch))
			Expect(stats.Predictions).To(Equal(uint64(1)))
		})
	})

	Describe("observers", func() {
		It("should receive results with pre-update history", func() {
			var results []sim.Result
			s := sim.NewSimulator(predictor.NewGlobalHistory(),
				sim.WithObserver(sim.ObserverFunc(func(r sim.Result) {
					results = append(results, r)
				})),
			)

			_, err := s.Run(context.Background(), uniformTrace(3, predictor.Taken).Source())
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].HistoryWidth).To(Equal(5))
			Expect(results[0].History).To(Equal(uint32(0)))
			Expect(results[1].History).To(Equal(uint32(1)))
			Expect(results[2].History).To(Equal(uint32(3)))
			Expect(results[2].Correct).To(BeFalse())
		})
	})

	Describe("target buffer", func() {
		It("should count target hits on repeated taken branches", func() {
			buf, err := btb.New(btb.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			t := &trace.Trace{
				Metadata: []predictor.Metadata{{Address: 0x100, Target: 0x80}},
			}
			for i := 0; i < 4; i++ {
				t.Records = append(t.Records, trace.Record{Address: 0x100, Actual: predictor.Taken})
			}

			s := sim.NewSimulator(predictor.AlwaysTaken{},
				sim.WithTargetBuffer(buf),
				sim.WithMetadata(t.Metadata),
			)
			stats, err := s.Run(context.Background(), t.Source())
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TargetMisses).To(Equal(uint64(1)))
			Expect(stats.TargetHits).To(Equal(uint64(3)))
			Expect(stats.TargetHitRate()).To(Equal(75.0))
		})

		It("should not consult the buffer on not-taken predictions", func() {
			buf, _ := btb.New(btb.DefaultConfig())
			s := sim.NewSimulator(predictor.AlwaysNotTaken{}, sim.WithTargetBuffer(buf))
			_, err := s.Run(context.Background(), uniformTrace(4, predictor.Taken).Source())
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.Stats().Lookups).To(Equal(uint64(0)))
		})
	})

	It("should reset statistics and predictor state", func() {
		p := predictor.NewGlobalCounter()
		s := sim.NewSimulator(p)
		_, err := s.Run(context.Background(), uniformTrace(6, predictor.Taken).Source())
		Expect(err).NotTo(HaveOccurred())

		s.Reset()
		Expect(s.Stats()).To(Equal(sim.Stats{}))
		h, _ := p.History(0)
		Expect(h).To(Equal(uint32(0)))
	})

	It("should log records at trace level", func() {
		var buf bytes.Buffer
		s := sim.NewSimulator(predictor.AlwaysTaken{},
			sim.WithLogger(sim.NewLogger(&buf, sim.LevelTrace, true)),
		)
		_, err := s.Run(context.Background(), uniformTrace(2, predictor.Taken).Source())
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[0]).To(ContainSubstring(`"predicted":"TAKEN"`))
		Expect(lines[2]).To(ContainSubstring("trace complete"))
	})
})
