package codegen

import (
	"iki/internal/ast"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NameTable", func() {
	var table *NameTable

	BeforeEach(func() {
		table = NewNameTable()
	})

	It("should name referents in order of first sight", func() {
		x := &ast.VarDecl{Name: "x"}
		y := &ast.VarDecl{Name: "y"}

		Expect(table.NameFor(x)).To(Equal("_v1"))
		Expect(table.NameFor(y)).To(Equal("_v2"))
	})

	It("should return the same name for the same referent", func() {
		x := &ast.VarDecl{Name: "x"}

		first := table.NameFor(x)
		table.NameFor(&ast.VarDecl{Name: "y"})

		Expect(table.NameFor(x)).To(Equal(first))
		Expect(table.Len()).To(Equal(2))
	})

	It("should give distinct referents distinct names even when source names match", func() {
		outer := &ast.VarDecl{Name: "x"}
		inner := &ast.VarDecl{Name: "x"}

		Expect(table.NameFor(outer)).NotTo(Equal(table.NameFor(inner)))
	})

	It("should stay injective over many referents", func() {
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			name := table.NameFor(&ast.VarDecl{Name: "v"})
			Expect(seen).NotTo(HaveKey(name))
			seen[name] = true
		}
	})
})

var _ = Describe("LabelGen", func() {
	It("should never repeat a label", func() {
		gen := &LabelGen{}
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			label := gen.FreshLabel()
			Expect(seen).NotTo(HaveKey(label))
			seen[label] = true
		}
	})

	It("should number labels in generation order", func() {
		gen := &LabelGen{}

		Expect(gen.FreshLabel()).To(Equal("L1"))
		Expect(gen.FreshLabel()).To(Equal("L2"))
		Expect(gen.FreshLabel()).To(Equal("L3"))
	})
})

var _ = Describe("Operands", func() {
	It("should render each variant for AT&T syntax", func() {
		Expect(Imm(42).String()).To(Equal("$42"))
		Expect(Imm(-3).String()).To(Equal("$-3"))
		Expect((&Register{Name: "r8"}).String()).To(Equal("%r8"))
		Expect(Mem("_v3").String()).To(Equal("_v3"))
		Expect(Mem("_v3").Address()).To(Equal("$_v3"))
	})
})
