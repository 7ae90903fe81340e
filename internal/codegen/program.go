package codegen

import (
	"fmt"
	"iki/internal/ast"
	"log/slog"
)

// Program runs one generation pass over prog and returns the complete
// assembly text. Any error aborts the pass and no text is returned.
func (g *Generator) Program(prog *ast.Program) (string, error) {
	g.reset()
	if prog == nil {
		return "", fmt.Errorf("%w: nil program", ErrUnknownNode)
	}
	g.log.Debug("generating program")

	t := g.target
	w := g.out

	// --- Text section ---
	emitInstr(w, ".globl", t.EntryPoint)
	emitInstr(w, ".text")
	emitLabel(w, t.EntryPoint)
	emitInstr(w, "push", reg(t.BasePointer))

	if err := g.stmt(prog.Block); err != nil {
		return "", err
	}

	emitInstr(w, "pop", reg(t.BasePointer))
	emitInstr(w, "ret")

	// --- Data section ---
	emitInstr(w, ".data")
	w.Emit(t.ReadFormat + ":\t.ascii\t\"%d\\0\\0\"") // second NUL pads to 4 bytes
	w.Emit(t.WriteFormat + ":\t.ascii\t\"%d\\n\\0\"")
	for _, name := range g.used {
		w.Emit(name + ":\t.quad\t0")
	}

	g.log.Debug("generated program",
		"lines", len(w.Lines()),
		"variables", len(g.used),
		"labels", g.labels.count)
	return w.String(), nil
}

// Generate translates prog for the fixed x86-64 target using the default
// logger.
func Generate(prog *ast.Program) (string, error) {
	return GenerateWith(prog, X86_64(OS_Linux), slog.Default())
}

// GenerateWith translates prog for target, logging to logger.
func GenerateWith(prog *ast.Program, target *Target, logger *slog.Logger) (string, error) {
	return NewGenerator(target, logger).Program(prog)
}
