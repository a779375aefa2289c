package predictor_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/branchsim/predictor"
)

var _ = Describe("Static predictors", func() {
	addresses := []uint32{0, 1, 0x10, 0x400500, 0xffffffff}

	Describe("AlwaysNotTaken", func() {
		It("should never predict taken", func() {
			p := predictor.AlwaysNotTaken{}
			for _, addr := range addresses {
				Expect(p.Update(addr, predictor.Taken)).To(Succeed())
				d, err := p.Predict(addr)
				Expect(err).NotTo(HaveOccurred())
				Expect(d).To(Equal(predictor.NotTaken))
			}
		})
	})

	Describe("AlwaysTaken", func() {
		It("should always predict taken", func() {
			p := predictor.AlwaysTaken{}
			for _, addr := range addresses {
				Expect(p.Update(addr, predictor.NotTaken)).To(Succeed())
				d, err := p.Predict(addr)
				Expect(err).NotTo(HaveOccurred())
				Expect(d).To(Equal(predictor.Taken))
			}
		})
	})

	Describe("BTFNT", func() {
		var p *predictor.BTFNT

		BeforeEach(func() {
			p = predictor.NewBTFNT([]predictor.Metadata{
				{Address: 0x1000, Target: 0x2000}, // forward
				{Address: 0x3000, Target: 0x2800}, // backward
				{Address: 0x4000, Target: 0x4000}, // self loop
				{Address: 0x1000, Target: 0x0800}, // duplicate, ignored
			})
		})

		It("should predict forward branches not taken", func() {
			d, err := p.Predict(0x1000)
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(predictor.NotTaken))
		})

		It("should predict backward branches taken", func() {
			d, err := p.Predict(0x3000)
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(predictor.Taken))
		})

		It("should treat a branch to itself as backward", func() {
			d, err := p.Predict(0x4000)
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(predictor.Taken))
		})

		It("should keep the first entry for duplicate addresses", func() {
			Expect(p.Len()).To(Equal(3))
		})

		It("should report unknown branches", func() {
			_, err := p.Predict(0x5000)
			Expect(err).To(MatchError(predictor.ErrUnknownBranch))
			Expect(err.Error()).To(ContainSubstring("0x5000"))
		})

		It("should not adapt to outcomes", func() {
			for i := 0; i < 8; i++ {
				Expect(p.Update(0x1000, predictor.Taken)).To(Succeed())
			}
			d, _ := p.Predict(0x1000)
			Expect(d).To(Equal(predictor.NotTaken))
		})

		It("should handle a branch at address zero", func() {
			p = predictor.NewBTFNT([]predictor.Metadata{{Address: 0, Target: 0x40}})
			d, err := p.Predict(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(predictor.NotTaken))
		})
	})
})
