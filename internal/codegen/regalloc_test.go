package codegen

import (
	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Allocator", func() {
	var (
		mockCtrl *gomock.Controller
		out      *MockEmitter
		alloc    *Allocator
		pool     []string
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		out = NewMockEmitter(mockCtrl)
		pool = X86_64(OS_Linux).Scratch
		alloc = NewAllocator(pool, out, quietLogger())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	bindAll := func() []*Register {
		var regs []*Register
		for range pool {
			r, err := alloc.Fresh()
			Expect(err).NotTo(HaveOccurred())
			regs = append(regs, r)
		}
		return regs
	}

	// Every bound name must point at an operand that carries that name.
	expectConsistentBindings := func() {
		seen := map[*Register]string{}
		for _, name := range pool {
			r := alloc.Occupant(name)
			if r == nil {
				continue
			}
			Expect(r.Name).To(Equal(name))
			Expect(seen).NotTo(HaveKey(r), "operand bound to %s and %s", seen[r], name)
			seen[r] = name
		}
	}

	It("should hand out registers in priority order", func() {
		regs := bindAll()

		names := make([]string, len(regs))
		for i, r := range regs {
			names[i] = r.Name
		}
		Expect(names).To(Equal([]string{"rax", "rcx", "r8", "r9", "r10", "r11"}))
		Expect(alloc.InUse()).To(Equal(6))
		expectConsistentBindings()
	})

	It("should never hand out the argument or remainder registers", func() {
		target := X86_64(OS_Linux)
		reserved := append([]string{target.RemainderReg}, target.ArgRegs...)
		Expect(reserved).To(ConsistOf("rdi", "rsi", "rdx"))

		for _, r := range bindAll() {
			Expect(r.Name).NotTo(BeElementOf(reserved))
		}
	})

	It("should fail when every register is bound", func() {
		bindAll()

		r, err := alloc.Fresh()

		Expect(err).To(MatchError(ErrNoFreeRegister))
		Expect(r).To(BeNil())
		Expect(alloc.InUse()).To(Equal(6))
	})

	It("should reuse the whole pool from the start after FreeAll", func() {
		first := bindAll()

		alloc.FreeAll()
		Expect(alloc.InUse()).To(BeZero())

		second := bindAll()
		for i := range pool {
			Expect(second[i].Name).To(Equal(pool[i]))
			Expect(second[i]).NotTo(BeIdenticalTo(first[i]))
		}
	})

	It("should bind a free dividend register without emitting code", func() {
		r, err := alloc.Bind("rax")

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Name).To(Equal("rax"))
		Expect(alloc.Occupant("rax")).To(BeIdenticalTo(r))
	})

	It("should relocate the occupant of the dividend register", func() {
		occupant, err := alloc.Fresh()
		Expect(err).NotTo(HaveOccurred())
		Expect(occupant.Name).To(Equal("rax"))

		out.EXPECT().Emit("\tmovq\t%rax, %rcx")

		r, err := alloc.Bind("rax")

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Name).To(Equal("rax"))
		Expect(occupant.Name).To(Equal("rcx"))
		Expect(alloc.Occupant("rcx")).To(BeIdenticalTo(occupant))
		Expect(alloc.Occupant("rax")).To(BeIdenticalTo(r))
		expectConsistentBindings()
	})

	It("should fail to relocate when the pool is full", func() {
		bindAll()

		_, err := alloc.Bind("rax")

		Expect(err).To(MatchError(ErrNoFreeRegister))
	})

	It("should leave register and memory operands alone", func() {
		r, err := alloc.Fresh()
		Expect(err).NotTo(HaveOccurred())

		op, err := alloc.NonImmediate(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(BeIdenticalTo(r))

		op, err = alloc.NonImmediate(Mem("_v1"))
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(Mem("_v1")))
		Expect(alloc.InUse()).To(Equal(1))
	})

	It("should materialize immediates into a fresh register", func() {
		out.EXPECT().Emit("\tmovq\t$7, %rax")

		op, err := alloc.NonImmediate(Imm(7))

		Expect(err).NotTo(HaveOccurred())
		r, ok := op.(*Register)
		Expect(ok).To(BeTrue())
		Expect(r.Name).To(Equal("rax"))
	})

	It("should keep bindings exclusive through relocations", func() {
		for i := 0; i < 3; i++ {
			_, err := alloc.Fresh()
			Expect(err).NotTo(HaveOccurred())
		}
		out.EXPECT().Emit("\tmovq\t%rax, %r9")
		_, err := alloc.Bind("rax")
		Expect(err).NotTo(HaveOccurred())

		out.EXPECT().Emit("\tmovq\t%rax, %r10")
		_, err = alloc.Bind("rax")
		Expect(err).NotTo(HaveOccurred())

		Expect(alloc.InUse()).To(Equal(5))
		expectConsistentBindings()
	})
})
