package ast

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Loader: builds a resolved Program from a YAML (or JSON) document
//
// The document is the hand-off format of the front end:
//
//	declarations: [{name: x, type: int}]
//	statements:
//	  - assign: {target: x, source: {binary: {op: "+", left: {int: 2}, right: {int: 3}}}}
//	  - write: [{var: x}]
//
// Statement forms: assign, read, write, while, block.
// Expression forms: int, bool, var, unary, binary.
//
// Every var reference is resolved against the enclosing block scopes so
// that it carries the *VarDecl it names as its referent.
// ---------------------------------------------------------------------------

// LoadError reports a malformed or unresolvable document node.
type LoadError struct {
	Path string
	Pos  Position
	Msg  string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s: %s", e.Pos.Line, e.Pos.Column, e.Path, e.Msg)
}

// LoadFile reads and resolves the program stored at path.
func LoadFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and resolves a program document.
func Load(r io.Reader) (*Program, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("decode program: empty document")
		}
		return nil, fmt.Errorf("decode program: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("decode program: expected a document")
	}

	l := &loader{}
	root := doc.Content[0]
	block, err := l.block(root, "program")
	if err != nil {
		return nil, err
	}
	return &Program{Block: block, Pos: posOf(root)}, nil
}

type loader struct {
	scopes []map[string]*VarDecl
}

func posOf(n *yaml.Node) Position {
	return Position{Line: n.Line, Column: n.Column}
}

func fail(n *yaml.Node, path, format string, args ...any) error {
	return &LoadError{Path: path, Pos: posOf(n), Msg: fmt.Sprintf(format, args...)}
}

// field returns the value stored under key in a mapping node, or nil.
func field(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// only unwraps a single-key mapping such as {int: 3} into ("int", 3).
func only(n *yaml.Node, path string) (string, *yaml.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, fail(n, path, "expected a mapping with exactly one key")
	}
	return n.Content[0].Value, n.Content[1], nil
}

func checkKeys(n *yaml.Node, path string, allowed ...string) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		known := false
		for _, a := range allowed {
			if key.Value == a {
				known = true
				break
			}
		}
		if !known {
			return fail(key, path, "unknown key %q (expected one of %s)", key.Value, strings.Join(allowed, ", "))
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Scopes
// ---------------------------------------------------------------------------

func (l *loader) push() { l.scopes = append(l.scopes, map[string]*VarDecl{}) }
func (l *loader) pop()  { l.scopes = l.scopes[:len(l.scopes)-1] }

func (l *loader) declare(d *VarDecl, n *yaml.Node, path string) error {
	scope := l.scopes[len(l.scopes)-1]
	if _, dup := scope[d.Name]; dup {
		return fail(n, path, "variable %q already declared in this block", d.Name)
	}
	scope[d.Name] = d
	return nil
}

func (l *loader) lookup(name string) *VarDecl {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if d, ok := l.scopes[i][name]; ok {
			return d
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Blocks and statements
// ---------------------------------------------------------------------------

func (l *loader) block(n *yaml.Node, path string) (*Block, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fail(n, path, "expected a block mapping")
	}
	if err := checkKeys(n, path, "declarations", "statements"); err != nil {
		return nil, err
	}

	l.push()
	defer l.pop()

	block := &Block{Pos: posOf(n)}

	if decls := field(n, "declarations"); decls != nil {
		if decls.Kind != yaml.SequenceNode {
			return nil, fail(decls, path+".declarations", "expected a list")
		}
		for i, dn := range decls.Content {
			p := fmt.Sprintf("%s.declarations[%d]", path, i)
			d, err := l.varDecl(dn, p)
			if err != nil {
				return nil, err
			}
			block.Stmts = append(block.Stmts, d)
		}
	}

	if stmts := field(n, "statements"); stmts != nil {
		if stmts.Kind != yaml.SequenceNode {
			return nil, fail(stmts, path+".statements", "expected a list")
		}
		for i, sn := range stmts.Content {
			p := fmt.Sprintf("%s.statements[%d]", path, i)
			s, err := l.stmt(sn, p)
			if err != nil {
				return nil, err
			}
			block.Stmts = append(block.Stmts, s)
		}
	}
	return block, nil
}

func (l *loader) varDecl(n *yaml.Node, path string) (*VarDecl, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fail(n, path, "expected {name, type}")
	}
	if err := checkKeys(n, path, "name", "type"); err != nil {
		return nil, err
	}
	name := field(n, "name")
	if name == nil || name.Kind != yaml.ScalarNode || name.Value == "" {
		return nil, fail(n, path, "declaration needs a name")
	}

	d := &VarDecl{Name: name.Value, Type: Int, Pos: posOf(n)}
	if tn := field(n, "type"); tn != nil {
		switch tn.Value {
		case "int":
			d.Type = Int
		case "bool":
			d.Type = Bool
		default:
			return nil, fail(tn, path+".type", "unknown type %q", tn.Value)
		}
	}
	if err := l.declare(d, n, path); err != nil {
		return nil, err
	}
	return d, nil
}

func (l *loader) stmt(n *yaml.Node, path string) (Stmt, error) {
	kind, body, err := only(n, path)
	if err != nil {
		return nil, err
	}
	path += "." + kind

	switch kind {
	case "assign":
		return l.assign(body, path)
	case "read":
		if body.Kind != yaml.SequenceNode {
			return nil, fail(body, path, "expected a list of variable names")
		}
		s := &Read{Pos: posOf(n)}
		for i, vn := range body.Content {
			ref, err := l.varRef(vn, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			s.Vars = append(s.Vars, ref)
		}
		return s, nil
	case "write":
		if body.Kind != yaml.SequenceNode {
			return nil, fail(body, path, "expected a list of expressions")
		}
		s := &Write{Pos: posOf(n)}
		for i, en := range body.Content {
			e, err := l.expr(en, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			s.Exprs = append(s.Exprs, e)
		}
		return s, nil
	case "while":
		return l.while(body, path)
	case "block":
		return l.block(body, path)
	default:
		return nil, fail(n, path, "unknown statement kind")
	}
}

func (l *loader) assign(n *yaml.Node, path string) (*Assign, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fail(n, path, "expected {target, source}")
	}
	if err := checkKeys(n, path, "target", "source"); err != nil {
		return nil, err
	}
	tn, sn := field(n, "target"), field(n, "source")
	if tn == nil || sn == nil {
		return nil, fail(n, path, "assignment needs a target and a source")
	}
	target, err := l.varRef(tn, path+".target")
	if err != nil {
		return nil, err
	}
	source, err := l.expr(sn, path+".source")
	if err != nil {
		return nil, err
	}
	return &Assign{Target: target, Source: source, Pos: posOf(n)}, nil
}

func (l *loader) while(n *yaml.Node, path string) (*While, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fail(n, path, "expected {condition, body}")
	}
	if err := checkKeys(n, path, "condition", "body"); err != nil {
		return nil, err
	}
	cn, bn := field(n, "condition"), field(n, "body")
	if cn == nil || bn == nil {
		return nil, fail(n, path, "while needs a condition and a body")
	}
	cond, err := l.expr(cn, path+".condition")
	if err != nil {
		return nil, err
	}
	body, err := l.block(bn, path+".body")
	if err != nil {
		return nil, err
	}
	return &While{Cond: cond, Body: body, Pos: posOf(n)}, nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (l *loader) varRef(n *yaml.Node, path string) (*VarRef, error) {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return nil, fail(n, path, "expected a variable name")
	}
	d := l.lookup(n.Value)
	if d == nil {
		return nil, fail(n, path, "undeclared variable %q", n.Value)
	}
	return &VarRef{Name: n.Value, Referent: d, Pos: posOf(n)}, nil
}

func (l *loader) expr(n *yaml.Node, path string) (Expr, error) {
	kind, body, err := only(n, path)
	if err != nil {
		return nil, err
	}
	path += "." + kind

	switch kind {
	case "int":
		var v int64
		if err := body.Decode(&v); err != nil {
			return nil, fail(body, path, "bad integer literal %q", body.Value)
		}
		return &IntLit{Value: v, Pos: posOf(n)}, nil
	case "bool":
		var v bool
		if err := body.Decode(&v); err != nil {
			return nil, fail(body, path, "bad boolean literal %q", body.Value)
		}
		return &BoolLit{Value: v, Pos: posOf(n)}, nil
	case "var":
		return l.varRef(body, path)
	case "unary":
		return l.unary(body, path)
	case "binary":
		return l.binary(body, path)
	default:
		return nil, fail(n, path, "unknown expression kind")
	}
}

func (l *loader) unary(n *yaml.Node, path string) (*Unary, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fail(n, path, "expected {op, operand}")
	}
	if err := checkKeys(n, path, "op", "operand"); err != nil {
		return nil, err
	}
	on, xn := field(n, "op"), field(n, "operand")
	if on == nil || xn == nil {
		return nil, fail(n, path, "unary expression needs an op and an operand")
	}

	var op UnaryOp
	switch on.Value {
	case "-":
		op = Neg
	case "not":
		op = Not
	default:
		return nil, fail(on, path+".op", "unknown unary operator %q", on.Value)
	}
	operand, err := l.expr(xn, path+".operand")
	if err != nil {
		return nil, err
	}
	return &Unary{Op: op, Operand: operand, Pos: posOf(n)}, nil
}

func (l *loader) binary(n *yaml.Node, path string) (*Binary, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fail(n, path, "expected {op, left, right}")
	}
	if err := checkKeys(n, path, "op", "left", "right"); err != nil {
		return nil, err
	}
	on, ln, rn := field(n, "op"), field(n, "left"), field(n, "right")
	if on == nil || ln == nil || rn == nil {
		return nil, fail(n, path, "binary expression needs an op, a left and a right")
	}

	var op BinaryOp
	switch on.Value {
	case "+":
		op = Add
	case "-":
		op = Sub
	case "*":
		op = Mul
	case "/":
		op = Div
	default:
		return nil, fail(on, path+".op", "unknown binary operator %q", on.Value)
	}
	left, err := l.expr(ln, path+".left")
	if err != nil {
		return nil, err
	}
	right, err := l.expr(rn, path+".right")
	if err != nil {
		return nil, err
	}
	return &Binary{Op: op, Left: left, Right: right, Pos: posOf(n)}, nil
}
