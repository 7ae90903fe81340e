package codegen

import (
	"errors"
	"fmt"
	"log/slog"
)

// ---------------------------------------------------------------------------
// Register allocator
//
// Registers are handed out from a fixed pool in priority order and are only
// returned all at once by FreeAll. Nothing is ever spilled, so running out of
// registers is fatal for the pass.
// ---------------------------------------------------------------------------

// ErrNoFreeRegister is returned when every register in the pool is bound.
var ErrNoFreeRegister = errors.New("no free register")

// Allocator owns the binding of pool registers to live register operands.
type Allocator struct {
	names    []string
	bindings map[string]*Register
	out      Emitter
	log      *slog.Logger
}

// NewAllocator returns an allocator over pool that emits relocation and
// materialization moves to out.
func NewAllocator(pool []string, out Emitter, logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{
		names:    pool,
		bindings: map[string]*Register{},
		out:      out,
		log:      logger,
	}
}

// Fresh binds a new register operand to the first free register.
func (a *Allocator) Fresh() (*Register, error) {
	r := &Register{}
	if err := a.assignFree(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Bind returns a new operand bound to the named register. A current occupant
// is moved to a free register first, and keeps its value there.
func (a *Allocator) Bind(name string) (*Register, error) {
	if occupant, ok := a.bindings[name]; ok {
		if err := a.assignFree(occupant); err != nil {
			return nil, fmt.Errorf("relocate %s: %w", reg(name), err)
		}
		emitInstr(a.out, "movq", reg(name), occupant.String())
		a.log.Debug("relocated register", "from", name, "to", occupant.Name)
	}
	r := &Register{Name: name}
	a.bindings[name] = r
	a.log.Debug("bound register", "register", name)
	return r, nil
}

// NonImmediate returns op unchanged unless it is an immediate, in which case
// the value is moved into a fresh register and that register is returned.
func (a *Allocator) NonImmediate(op Operand) (Operand, error) {
	imm, ok := op.(Immediate)
	if !ok {
		return op, nil
	}
	r, err := a.Fresh()
	if err != nil {
		return nil, err
	}
	emitMove(a.out, imm, r)
	return r, nil
}

// FreeAll drops every binding. No code is emitted.
func (a *Allocator) FreeAll() {
	if len(a.bindings) > 0 {
		a.log.Debug("freed registers", "count", len(a.bindings))
	}
	clear(a.bindings)
}

// Occupant returns the operand bound to the named register, or nil.
func (a *Allocator) Occupant(name string) *Register {
	return a.bindings[name]
}

// InUse reports how many registers are bound.
func (a *Allocator) InUse() int {
	return len(a.bindings)
}

// assignFree rebinds r to the first unbound register in the pool.
func (a *Allocator) assignFree(r *Register) error {
	for _, name := range a.names {
		if _, taken := a.bindings[name]; !taken {
			a.bindings[name] = r
			r.Name = name
			a.log.Debug("bound register", "register", name)
			return nil
		}
	}
	return fmt.Errorf("%w: all %d registers are bound", ErrNoFreeRegister, len(a.names))
}
