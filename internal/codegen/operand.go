package codegen

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Operands
//
// An operand says where a value lives at code-generation time: in the
// instruction itself, in a register, or in a static storage cell. The
// variant of an operand never changes; moving a value somewhere else always
// produces a new operand and a move instruction.
// ---------------------------------------------------------------------------

// Operand is one of Immediate, *Register or Memory.
type Operand interface {
	fmt.Stringer
	operand()
}

// Immediate is a constant encoded in the instruction.
type Immediate struct {
	Value int64
}

func (i Immediate) String() string { return "$" + strconv.FormatInt(i.Value, 10) }
func (Immediate) operand()         {}

// Register is a value held in a general-purpose register. The allocator
// may move a live register operand to another register, so it is always
// handled by pointer.
type Register struct {
	Name string
}

func (r *Register) String() string { return "%" + r.Name }
func (*Register) operand()         {}

// Memory is a value held in a named static storage cell.
type Memory struct {
	Name string
}

func (m Memory) String() string { return m.Name }
func (Memory) operand()         {}

// Address renders the address of the cell rather than its contents.
func (m Memory) Address() string { return "$" + m.Name }

// Convenience constructors for operands.
func Imm(val int64) Immediate { return Immediate{Value: val} }
func Mem(name string) Memory  { return Memory{Name: name} }
