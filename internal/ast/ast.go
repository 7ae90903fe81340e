package ast

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Source position
// ---------------------------------------------------------------------------

// Position represents a line/column pair in the source document (1-based).
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// Node is implemented by every AST node.
type Node interface {
	GetPos() Position
}

// Stmt is implemented by every statement node. The set is closed: only types
// in this package can satisfy it.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node. The set is closed: only types
// in this package can satisfy it.
type Expr interface {
	Node
	exprNode()
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Type is the declared type of a variable.
type Type int

const (
	Int Type = iota
	Bool
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Program (root)
// ---------------------------------------------------------------------------

type Program struct {
	Block *Block
	Pos   Position
}

func (n *Program) GetPos() Position { return n.Pos }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Block is a sequence of declarations and statements sharing one scope.
type Block struct {
	Stmts []Stmt
	Pos   Position
}

func (n *Block) GetPos() Position { return n.Pos }
func (n *Block) stmtNode()        {}

// VarDecl declares a variable. Its address is the referent that every
// VarRef to the variable carries.
type VarDecl struct {
	Name string
	Type Type
	Pos  Position
}

func (n *VarDecl) GetPos() Position { return n.Pos }
func (n *VarDecl) stmtNode()        {}

// Assign represents target := source.
type Assign struct {
	Target *VarRef
	Source Expr
	Pos    Position
}

func (n *Assign) GetPos() Position { return n.Pos }
func (n *Assign) stmtNode()        {}

// Read reads one integer from standard input into each variable in order.
type Read struct {
	Vars []*VarRef
	Pos  Position
}

func (n *Read) GetPos() Position { return n.Pos }
func (n *Read) stmtNode()        {}

// Write prints the value of each expression in order, one per line.
type Write struct {
	Exprs []Expr
	Pos   Position
}

func (n *Write) GetPos() Position { return n.Pos }
func (n *Write) stmtNode()        {}

type While struct {
	Cond Expr
	Body *Block
	Pos  Position
}

func (n *While) GetPos() Position { return n.Pos }
func (n *While) stmtNode()        {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

type IntLit struct {
	Value int64
	Pos   Position
}

func (n *IntLit) GetPos() Position { return n.Pos }
func (n *IntLit) exprNode()        {}

type BoolLit struct {
	Value bool
	Pos   Position
}

func (n *BoolLit) GetPos() Position { return n.Pos }
func (n *BoolLit) exprNode()        {}

// VarRef is a use of a variable. Referent is set by name resolution and is
// the same pointer for every reference to one declaration.
type VarRef struct {
	Name     string
	Referent *VarDecl
	Pos      Position
}

func (n *VarRef) GetPos() Position { return n.Pos }
func (n *VarRef) exprNode()        {}

// UnaryOp is the operator of a unary expression.
type UnaryOp int

const (
	Neg UnaryOp = iota // -
	Not                // not
)

func (op UnaryOp) String() string {
	switch op {
	case Neg:
		return "-"
	case Not:
		return "not"
	default:
		return fmt.Sprintf("unop_%d", int(op))
	}
}

type Unary struct {
	Op      UnaryOp
	Operand Expr
	Pos     Position
}

func (n *Unary) GetPos() Position { return n.Pos }
func (n *Unary) exprNode()        {}

// BinaryOp is the operator of a binary expression.
type BinaryOp int

const (
	Add BinaryOp = iota // +
	Sub                 // -
	Mul                 // *
	Div                 // /
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return fmt.Sprintf("binop_%d", int(op))
	}
}

type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
	Pos   Position
}

func (n *Binary) GetPos() Position { return n.Pos }
func (n *Binary) exprNode()        {}

// ---------------------------------------------------------------------------
// Visitors
//
// A visitor has one method per node kind. Adding a kind to this package
// means adding a method here, which breaks every visitor that does not
// handle it at build time.
// ---------------------------------------------------------------------------

// ErrUnknownNode is returned when a walk meets a node outside the fixed kind
// set, including nil children.
var ErrUnknownNode = errors.New("unknown node kind")

// StmtVisitor handles every statement kind.
type StmtVisitor interface {
	VisitBlock(*Block) error
	VisitVarDecl(*VarDecl) error
	VisitAssign(*Assign) error
	VisitRead(*Read) error
	VisitWrite(*Write) error
	VisitWhile(*While) error
}

// ExprVisitor handles every expression kind, producing an R per expression.
type ExprVisitor[R any] interface {
	VisitIntLit(*IntLit) (R, error)
	VisitBoolLit(*BoolLit) (R, error)
	VisitVarRef(*VarRef) (R, error)
	VisitUnary(*Unary) (R, error)
	VisitBinary(*Binary) (R, error)
}

// WalkStmt dispatches s to the matching method of v.
func WalkStmt(s Stmt, v StmtVisitor) error {
	switch s := s.(type) {
	case *Block:
		if s != nil {
			return v.VisitBlock(s)
		}
	case *VarDecl:
		if s != nil {
			return v.VisitVarDecl(s)
		}
	case *Assign:
		if s != nil {
			return v.VisitAssign(s)
		}
	case *Read:
		if s != nil {
			return v.VisitRead(s)
		}
	case *Write:
		if s != nil {
			return v.VisitWrite(s)
		}
	case *While:
		if s != nil {
			return v.VisitWhile(s)
		}
	}
	return fmt.Errorf("%w: statement %T", ErrUnknownNode, s)
}

// WalkExpr dispatches e to the matching method of v.
func WalkExpr[R any](e Expr, v ExprVisitor[R]) (R, error) {
	switch e := e.(type) {
	case *IntLit:
		if e != nil {
			return v.VisitIntLit(e)
		}
	case *BoolLit:
		if e != nil {
			return v.VisitBoolLit(e)
		}
	case *VarRef:
		if e != nil {
			return v.VisitVarRef(e)
		}
	case *Unary:
		if e != nil {
			return v.VisitUnary(e)
		}
	case *Binary:
		if e != nil {
			return v.VisitBinary(e)
		}
	}
	var zero R
	return zero, fmt.Errorf("%w: expression %T", ErrUnknownNode, e)
}
