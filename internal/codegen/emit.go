package codegen

import "strings"

// ---------------------------------------------------------------------------
// Instruction stream
// ---------------------------------------------------------------------------

// Emitter receives assembly lines in generation order.
type Emitter interface {
	Emit(line string)
}

// Listing is the append-only output of one generation pass.
type Listing struct {
	lines []string
}

func (l *Listing) Emit(line string) {
	l.lines = append(l.lines, line)
}

// Lines returns the lines emitted so far.
func (l *Listing) Lines() []string {
	return l.lines
}

// String joins the listing into assembly text ending in a newline.
func (l *Listing) String() string {
	if len(l.lines) == 0 {
		return ""
	}
	return strings.Join(l.lines, "\n") + "\n"
}

// ---------------------------------------------------------------------------
// AT&T instruction helpers (source first, destination last)
// ---------------------------------------------------------------------------

func emitInstr(e Emitter, mnemonic string, args ...string) {
	if len(args) == 0 {
		e.Emit("\t" + mnemonic)
		return
	}
	e.Emit("\t" + mnemonic + "\t" + strings.Join(args, ", "))
}

func emitMove(e Emitter, src, dst Operand) {
	emitInstr(e, "movq", src.String(), dst.String())
}

func emitBinary(e Emitter, mnemonic string, src, dst Operand) {
	emitInstr(e, mnemonic, src.String(), dst.String())
}

func emitLabel(e Emitter, label string) {
	e.Emit(label + ":")
}

func emitJump(e Emitter, label string) {
	emitInstr(e, "jmp", label)
}

func reg(name string) string { return "%" + name }
