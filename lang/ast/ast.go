// Package ast defines the types that represent the abstract syntax tree of
// a dyl source file.
package ast

import (
	"fmt"
	"go/token"
)

// Node represents any node in the AST.
type Node interface {
	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)
}

// Expr represents an expression in the AST. Every expression lowers to
// exactly one runtime value.
type Expr interface {
	Node
	expr()
}

// Program is an ordered list of functions. Exactly one must be named "main".
type Program struct {
	Functions []*Function
}

// Function is a name and a nullary body expression.
type Function struct {
	Name    string
	NamePos token.Pos
	Body    Expr
	FnPos   token.Pos // position of the 'fn' keyword
	EndPos  token.Pos // position just past the closing brace
}

func (f *Function) Span() (start, end token.Pos) { return f.FnPos, f.EndPos }

// IntLit is a signed integer literal.
type IntLit struct {
	Value    int32
	ValuePos token.Pos
}

func (e *IntLit) expr()                        {}
func (e *IntLit) Span() (start, end token.Pos) { return e.ValuePos, e.ValuePos }

// BoolLit is a boolean literal (true or false).
type BoolLit struct {
	Value    bool
	ValuePos token.Pos
}

func (e *BoolLit) expr()                        {}
func (e *BoolLit) Span() (start, end token.Pos) { return e.ValuePos, e.ValuePos }

// Ident is an identifier reference.
type Ident struct {
	Name    string
	NamePos token.Pos
}

func (e *Ident) expr()                        {}
func (e *Ident) Span() (start, end token.Pos) { return e.NamePos, e.NamePos }

// BinaryOp identifies the operator of a BinaryExpr.
type BinaryOp int8

const (
	Add BinaryOp = iota
	Sub
	Mul
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	default:
		return fmt.Sprintf("BinaryOp(%d)", int8(op))
	}
}

// BinaryExpr is a left-associative binary operation: Left <Op> Right.
type BinaryExpr struct {
	Left, Right Expr
	Op          BinaryOp
	OpPos       token.Pos
}

func (e *BinaryExpr) expr() {}
func (e *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = e.Left.Span()
	_, end = e.Right.Span()
	return start, end
}

// IfExpr is a conditional expression: if Cond Consequent else Alternative.
type IfExpr struct {
	Cond                    Expr
	Consequent, Alternative Expr
	IfPos                   token.Pos
}

func (e *IfExpr) expr() {}
func (e *IfExpr) Span() (start, end token.Pos) {
	_, end = e.Alternative.Span()
	return e.IfPos, end
}

// Binding is a single "let NAME = VALUE ;" clause.
type Binding struct {
	Name    string
	NamePos token.Pos
	Value   Expr
}

// LetExpr is a non-empty ordered list of bindings followed by a body
// expression, the value of which is the whole expression's value.
type LetExpr struct {
	Bindings []*Binding
	Body     Expr
	LetPos   token.Pos // position of the first 'let'
}

func (e *LetExpr) expr() {}
func (e *LetExpr) Span() (start, end token.Pos) {
	_, end = e.Body.Span()
	return e.LetPos, end
}

// BlockExpr is a brace-delimited expression: { Inner }. Inner is either a
// LetExpr or any other Expr.
type BlockExpr struct {
	Inner     Expr
	LBracePos token.Pos
	RBracePos token.Pos
}

func (e *BlockExpr) expr()                        {}
func (e *BlockExpr) Span() (start, end token.Pos) { return e.LBracePos, e.RBracePos }

// BadExpr is a placeholder for a syntactically invalid expression, allowing
// the parser to record a diagnostic and keep walking the rest of the source
// instead of aborting the whole pass.
type BadExpr struct {
	From, To token.Pos
}

func (e *BadExpr) expr()                        {}
func (e *BadExpr) Span() (start, end token.Pos) { return e.From, e.To }
