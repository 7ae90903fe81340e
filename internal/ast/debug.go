package ast

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Debug printer: produces a human-readable tree representation
// ---------------------------------------------------------------------------

// DebugString returns a readable multi-line representation of the AST.
func DebugString(prog *Program) string {
	var b strings.Builder
	b.WriteString("Program\n")
	if prog != nil && prog.Block != nil {
		debugBlock(&b, prog.Block, 1)
	}
	return b.String()
}

func writeIndent(b *strings.Builder, level int) {
	for i := 0; i < level; i++ {
		b.WriteString("  ")
	}
}

func debugBlock(b *strings.Builder, block *Block, level int) {
	writeIndent(b, level)
	if block == nil {
		b.WriteString("<nil>\n")
		return
	}
	fmt.Fprintf(b, "Block [%d statements]\n", len(block.Stmts))
	for _, s := range block.Stmts {
		debugStmt(b, s, level+1)
	}
}

func debugStmt(b *strings.Builder, s Stmt, level int) {
	if isNilStmt(s) {
		writeIndent(b, level)
		b.WriteString("<nil>\n")
		return
	}
	switch s := s.(type) {
	case *Block:
		debugBlock(b, s, level)
	case *VarDecl:
		writeIndent(b, level)
		fmt.Fprintf(b, "VarDecl %s: %s\n", s.Name, s.Type)
	case *Assign:
		writeIndent(b, level)
		fmt.Fprintf(b, "Assign %s := %s\n", ExprString(s.Target), ExprString(s.Source))
	case *Read:
		writeIndent(b, level)
		names := make([]string, len(s.Vars))
		for i, v := range s.Vars {
			names[i] = ExprString(v)
		}
		fmt.Fprintf(b, "Read %s\n", strings.Join(names, ", "))
	case *Write:
		writeIndent(b, level)
		exprs := make([]string, len(s.Exprs))
		for i, e := range s.Exprs {
			exprs[i] = ExprString(e)
		}
		fmt.Fprintf(b, "Write %s\n", strings.Join(exprs, ", "))
	case *While:
		writeIndent(b, level)
		fmt.Fprintf(b, "While (%s)\n", ExprString(s.Cond))
		debugBlock(b, s.Body, level+1)
	default:
		writeIndent(b, level)
		b.WriteString("<unknown stmt>\n")
	}
}

// isNilStmt reports whether s is nil or a typed nil pointer.
func isNilStmt(s Stmt) bool {
	switch s := s.(type) {
	case nil:
		return true
	case *Block:
		return s == nil
	case *VarDecl:
		return s == nil
	case *Assign:
		return s == nil
	case *Read:
		return s == nil
	case *Write:
		return s == nil
	case *While:
		return s == nil
	}
	return false
}

func isNilExpr(e Expr) bool {
	switch e := e.(type) {
	case nil:
		return true
	case *IntLit:
		return e == nil
	case *BoolLit:
		return e == nil
	case *VarRef:
		return e == nil
	case *Unary:
		return e == nil
	case *Binary:
		return e == nil
	}
	return false
}

// ExprString returns a concise one-line representation of an expression.
func ExprString(e Expr) string {
	if isNilExpr(e) {
		return "<nil>"
	}
	switch e := e.(type) {
	case *IntLit:
		return fmt.Sprintf("%d", e.Value)
	case *BoolLit:
		if e.Value {
			return "true"
		}
		return "false"
	case *VarRef:
		return e.Name
	case *Unary:
		if e.Op == Not {
			return fmt.Sprintf("(not %s)", ExprString(e.Operand))
		}
		return fmt.Sprintf("(%s%s)", e.Op, ExprString(e.Operand))
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", ExprString(e.Left), e.Op, ExprString(e.Right))
	default:
		return "<unknown expr>"
	}
}
