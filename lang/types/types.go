// Package types implements the bidirectional type checker: it walks a
// Program's AST, validates every node's inputs, and computes each node's
// output Type, recording a diagnostic for every rule violation instead of
// stopping at the first one.
package types

import (
	"go/token"

	"github.com/mna/dyl/lang/ast"
	"github.com/mna/dyl/lang/scanner"
)

// Type is the small closed type domain: every expression is either an Int,
// a Bool, or Err. Err is absorbing: it unifies with anything, and an
// expectation checked against Err always succeeds, so a single mistake does
// not cascade into a wall of unrelated-looking errors.
type Type int8

const (
	Int Type = iota
	Bool
	Err
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		return "<error type>"
	}
}

// Context owns the type checker's own error list (separate from the
// parser's and lowering's lists) and the environment of name-to-Type
// bindings currently in scope.
type Context struct {
	Errors scanner.ErrorList

	file *token.File
	env  []binding
}

type binding struct {
	name string
	typ  Type
}

// NewContext returns a Context that reports positions relative to file.
func NewContext(file *token.File) *Context {
	return &Context{file: file}
}

func (ctx *Context) error(pos token.Pos, msg string) {
	ctx.Errors.Add(ctx.file.Position(pos), msg)
}

// newScope returns a marker that dropScope truncates back to, implementing
// the same mark/truncate discipline as the lowerer's compile-time stack.
func (ctx *Context) newScope() int { return len(ctx.env) }

func (ctx *Context) dropScope(marker int) { ctx.env = ctx.env[:marker] }

func (ctx *Context) bind(name string, typ Type) {
	ctx.env = append(ctx.env, binding{name: name, typ: typ})
}

func (ctx *Context) resolve(name string) (Type, bool) {
	for i := len(ctx.env) - 1; i >= 0; i-- {
		if ctx.env[i].name == name {
			return ctx.env[i].typ, true
		}
	}
	return Err, false
}

// Check type-checks prog. It always walks every function (so every error in
// the program is reported), and returns an error iff any diagnostic was
// recorded or "main" does not output Int.
func Check(file *token.File, prog *ast.Program) (*Context, error) {
	ctx := NewContext(file)

	var main *ast.Function
	for _, fn := range prog.Functions {
		if fn.Name == "main" {
			main = fn
		}
		checkInputs(ctx, fn.Body)
	}

	if main == nil {
		ctx.error(token.NoPos, "missing function `main`")
	} else if ty := outputType(ctx, main.Body); ty != Err && ty != Int {
		pos, _ := main.Body.Span()
		ctx.error(pos, "`main` must output int, got "+ty.String())
	}

	ctx.Errors.Sort()
	return ctx, ctx.Errors.Err()
}

// checkInputs validates e's children (and e itself, for identifiers),
// recording a diagnostic per violation, without stopping early.
func checkInputs(ctx *Context, e ast.Expr) {
	switch e := e.(type) {
	case *ast.IntLit, *ast.BoolLit, *ast.BadExpr:
		// always valid (BadExpr already reported its own parse error)

	case *ast.Ident:
		if _, ok := ctx.resolve(e.Name); !ok {
			ctx.error(e.NamePos, "undefined identifier: "+e.Name)
		}

	case *ast.BinaryExpr:
		checkInputs(ctx, e.Left)
		checkInputs(ctx, e.Right)
		expectInt(ctx, e.Left)
		expectInt(ctx, e.Right)

	case *ast.IfExpr:
		checkInputs(ctx, e.Cond)
		checkInputs(ctx, e.Consequent)
		checkInputs(ctx, e.Alternative)
		expectBool(ctx, e.Cond)
		consequentTy := outputType(ctx, e.Consequent)
		alternativeTy := outputType(ctx, e.Alternative)
		if unify(consequentTy, alternativeTy) == Err && consequentTy != Err && alternativeTy != Err {
			pos, _ := e.Span()
			ctx.error(pos, "if branches have different types: "+consequentTy.String()+" and "+alternativeTy.String())
		}

	case *ast.LetExpr:
		marker := ctx.newScope()
		for _, b := range e.Bindings {
			checkInputs(ctx, b.Value)
			ctx.bind(b.Name, outputType(ctx, b.Value))
		}
		checkInputs(ctx, e.Body)
		ctx.dropScope(marker)

	case *ast.BlockExpr:
		checkInputs(ctx, e.Inner)

	default:
		panic("types: unhandled expression kind")
	}
}

// outputType computes e's result type without recording further
// diagnostics (checkInputs already reported any rule violation for e's
// subtree); an ill-typed node outputs Err so callers don't cascade.
func outputType(ctx *Context, e ast.Expr) Type {
	switch e := e.(type) {
	case *ast.IntLit:
		return Int
	case *ast.BoolLit:
		return Bool
	case *ast.BadExpr:
		return Err
	case *ast.Ident:
		ty, ok := ctx.resolve(e.Name)
		if !ok {
			return Err
		}
		return ty
	case *ast.BinaryExpr:
		return Int
	case *ast.IfExpr:
		consequentTy := outputType(ctx, e.Consequent)
		alternativeTy := outputType(ctx, e.Alternative)
		return unify(consequentTy, alternativeTy)
	case *ast.LetExpr:
		marker := ctx.newScope()
		for _, b := range e.Bindings {
			ctx.bind(b.Name, outputType(ctx, b.Value))
		}
		ty := outputType(ctx, e.Body)
		ctx.dropScope(marker)
		return ty
	case *ast.BlockExpr:
		return outputType(ctx, e.Inner)
	default:
		panic("types: unhandled expression kind")
	}
}

func expectInt(ctx *Context, e ast.Expr) {
	ty := outputType(ctx, e)
	if ty == Err || ty == Int {
		return
	}
	pos, _ := e.Span()
	ctx.error(pos, "expected int, got "+ty.String())
}

func expectBool(ctx *Context, e ast.Expr) {
	ty := outputType(ctx, e)
	if ty == Err || ty == Bool {
		return
	}
	pos, _ := e.Span()
	ctx.error(pos, "expected bool, got "+ty.String())
}

// unify returns the common type of a and b: Err is absorbing (unifies with
// anything), matching types unify to themselves, and mismatched Int/Bool
// unify to Err.
func unify(a, b Type) Type {
	if a == Err {
		return b
	}
	if b == Err {
		return a
	}
	if a == b {
		return a
	}
	return Err
}
