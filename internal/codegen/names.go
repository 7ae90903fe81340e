package codegen

import (
	"fmt"
	"iki/internal/ast"
)

// NameTable assigns storage names to variables. A referent keeps the name it
// was first given for the rest of the pass.
type NameTable struct {
	names  map[*ast.VarDecl]string
	lastID int
}

func NewNameTable() *NameTable {
	return &NameTable{names: map[*ast.VarDecl]string{}}
}

// NameFor returns the storage name of ref, allocating the next one on first
// sight.
func (t *NameTable) NameFor(ref *ast.VarDecl) string {
	if name, ok := t.names[ref]; ok {
		return name
	}
	t.lastID++
	name := fmt.Sprintf("_v%d", t.lastID)
	t.names[ref] = name
	return name
}

// Len reports how many referents have been named.
func (t *NameTable) Len() int { return len(t.names) }

// LabelGen hands out control-flow labels L1, L2, ... in order.
type LabelGen struct {
	count int
}

func (g *LabelGen) FreshLabel() string {
	g.count++
	return fmt.Sprintf("L%d", g.count)
}
