package codegen

import (
	"fmt"
	"iki/internal/ast"
	"log/slog"
)

// ---------------------------------------------------------------------------
// Generator: translates a resolved AST into x86-64 assembly text
//
// One Generator value holds all state of a pass: the name table, the set of
// variables that need storage, the label counter, the register bindings and
// the output listing. Statements are visited for their effect on the
// listing; expressions are visited for the operand holding their value.
// ---------------------------------------------------------------------------

// ErrUnknownNode is returned for nodes outside the fixed kind set.
var ErrUnknownNode = ast.ErrUnknownNode

type Generator struct {
	target *Target
	log    *slog.Logger

	out    *Listing
	regs   *Allocator
	names  *NameTable
	labels *LabelGen

	// Storage names in first-reference order.
	used    []string
	usedSet map[string]bool
}

var (
	_ ast.StmtVisitor          = (*Generator)(nil)
	_ ast.ExprVisitor[Operand] = (*Generator)(nil)
)

// NewGenerator creates a generator for target. A nil logger means
// slog.Default().
func NewGenerator(target *Target, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{target: target, log: logger}
	g.reset()
	return g
}

func (g *Generator) reset() {
	g.out = &Listing{}
	g.regs = NewAllocator(g.target.Scratch, g.out, g.log)
	g.names = NewNameTable()
	g.labels = &LabelGen{}
	g.used = nil
	g.usedSet = map[string]bool{}
}

func (g *Generator) stmt(s ast.Stmt) error {
	return ast.WalkStmt(s, g)
}

func (g *Generator) expr(e ast.Expr) (Operand, error) {
	return ast.WalkExpr[Operand](e, g)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (g *Generator) VisitBlock(b *ast.Block) error {
	for _, s := range b.Stmts {
		if err := g.stmt(s); err != nil {
			return err
		}
	}
	g.regs.FreeAll()
	return nil
}

// VisitVarDecl emits nothing: storage is static and appears in the data
// section once the variable is referenced.
func (g *Generator) VisitVarDecl(*ast.VarDecl) error {
	return nil
}

func (g *Generator) VisitAssign(s *ast.Assign) error {
	source, err := g.expr(s.Source)
	if err != nil {
		return err
	}
	target, err := g.expr(s.Target)
	if err != nil {
		return err
	}

	// x86 has no memory-to-memory move.
	if _, ok := source.(Memory); ok {
		if _, ok := target.(Memory); ok {
			staged, err := g.regs.Fresh()
			if err != nil {
				return err
			}
			emitMove(g.out, source, staged)
			source = staged
		}
	}
	emitMove(g.out, source, target)
	return nil
}

// VisitRead calls scanf once per variable with the variable's address.
func (g *Generator) VisitRead(s *ast.Read) error {
	for _, v := range s.Vars {
		cell, err := g.variable(v)
		if err != nil {
			return err
		}
		emitInstr(g.out, "movq", cell.Address(), reg(g.target.ArgRegs[1]))
		g.emitLibraryCall(g.target.ReadFormat, g.target.ScanFunc)
	}
	return nil
}

// VisitWrite calls printf once per expression with the expression's value.
func (g *Generator) VisitWrite(s *ast.Write) error {
	for _, e := range s.Exprs {
		op, err := g.expr(e)
		if err != nil {
			return err
		}
		emitInstr(g.out, "movq", op.String(), reg(g.target.ArgRegs[1]))
		g.emitLibraryCall(g.target.WriteFormat, g.target.PrintFunc)
	}
	return nil
}

// emitLibraryCall loads the format string, clears the vector-register count
// that variadic calls read from the return register, and calls fn.
func (g *Generator) emitLibraryCall(format, fn string) {
	emitInstr(g.out, "lea", format+"(%rip)", reg(g.target.ArgRegs[0]))
	emitInstr(g.out, "xor", reg(g.target.ReturnReg), reg(g.target.ReturnReg))
	emitInstr(g.out, "call", fn)
}

func (g *Generator) VisitWhile(s *ast.While) error {
	top := g.labels.FreshLabel()
	bottom := g.labels.FreshLabel()

	emitLabel(g.out, top)
	cond, err := g.expr(s.Cond)
	if err != nil {
		return err
	}
	if err := g.emitJumpIfFalse(cond, bottom); err != nil {
		return err
	}

	// The body starts every iteration with an empty register file.
	g.regs.FreeAll()

	if err := g.stmt(s.Body); err != nil {
		return err
	}
	emitJump(g.out, top)
	emitLabel(g.out, bottom)
	return nil
}

// emitJumpIfFalse branches to label when op is zero. cmpq cannot compare two
// immediates, so an immediate condition is moved into a register first.
func (g *Generator) emitJumpIfFalse(op Operand, label string) error {
	op, err := g.regs.NonImmediate(op)
	if err != nil {
		return err
	}
	emitInstr(g.out, "cmpq", Imm(0).String(), op.String())
	emitInstr(g.out, "je", label)
	return nil
}

// ---------------------------------------------------------------------------
// Expressions: each returns the operand holding the value
//
// A *Register returned from a sub-expression belongs to the caller alone:
// variables live in memory, so no other node can hold the same operand, and
// the caller may overwrite it in place.
// ---------------------------------------------------------------------------

func (g *Generator) VisitIntLit(e *ast.IntLit) (Operand, error) {
	return Imm(e.Value), nil
}

func (g *Generator) VisitBoolLit(e *ast.BoolLit) (Operand, error) {
	if e.Value {
		return Imm(1), nil
	}
	return Imm(0), nil
}

func (g *Generator) VisitVarRef(e *ast.VarRef) (Operand, error) {
	return g.variable(e)
}

// variable names the storage cell of v and records it for the data section.
func (g *Generator) variable(v *ast.VarRef) (Memory, error) {
	if v == nil || v.Referent == nil {
		return Memory{}, fmt.Errorf("%w: unresolved variable reference", ErrUnknownNode)
	}
	name := g.names.NameFor(v.Referent)
	if !g.usedSet[name] {
		g.usedSet[name] = true
		g.used = append(g.used, name)
		g.log.Debug("named variable", "variable", v.Name, "storage", name)
	}
	return Mem(name), nil
}

func (g *Generator) VisitUnary(e *ast.Unary) (Operand, error) {
	var apply func(r *Register)
	switch e.Op {
	case ast.Neg:
		apply = func(r *Register) { emitInstr(g.out, "negq", r.String()) }
	case ast.Not:
		// Booleans are 0 or 1.
		apply = func(r *Register) { emitBinary(g.out, "xorq", Imm(1), r) }
	default:
		return nil, fmt.Errorf("%w: unary operator %s", ErrUnknownNode, e.Op)
	}

	operand, err := g.expr(e.Operand)
	if err != nil {
		return nil, err
	}
	result, err := g.intoRegister(operand)
	if err != nil {
		return nil, err
	}
	apply(result)
	return result, nil
}

var arithmetic = map[ast.BinaryOp]string{
	ast.Add: "addq",
	ast.Sub: "subq",
	ast.Mul: "imulq",
}

func (g *Generator) VisitBinary(e *ast.Binary) (Operand, error) {
	if e.Op == ast.Div {
		return g.divide(e)
	}
	mnemonic, ok := arithmetic[e.Op]
	if !ok {
		return nil, fmt.Errorf("%w: binary operator %s", ErrUnknownNode, e.Op)
	}

	left, err := g.expr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.expr(e.Right)
	if err != nil {
		return nil, err
	}
	result, err := g.intoRegister(left)
	if err != nil {
		return nil, err
	}
	emitBinary(g.out, mnemonic, right, result)
	return result, nil
}

// divide forces the dividend into the dividend register, sign-extends it into
// the remainder register and divides by a non-immediate divisor. The
// quotient is left in the dividend register.
func (g *Generator) divide(e *ast.Binary) (Operand, error) {
	left, err := g.expr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := g.expr(e.Right)
	if err != nil {
		return nil, err
	}

	result, err := g.regs.Bind(g.target.DividendReg)
	if err != nil {
		return nil, err
	}
	emitMove(g.out, left, result)
	emitInstr(g.out, "cqto")
	divisor, err := g.regs.NonImmediate(right)
	if err != nil {
		return nil, err
	}
	emitInstr(g.out, "idivq", divisor.String())
	return result, nil
}

// intoRegister reuses op if it is already a register, otherwise moves it into
// a fresh one.
func (g *Generator) intoRegister(op Operand) (*Register, error) {
	if r, ok := op.(*Register); ok {
		return r, nil
	}
	r, err := g.regs.Fresh()
	if err != nil {
		return nil, err
	}
	emitMove(g.out, op, r)
	return r, nil
}
