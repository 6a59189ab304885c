package lowering

import (
	"errors"
	"fmt"
	"go/token"

	"github.com/mna/dyl/lang/ast"
	"github.com/mna/dyl/lang/compiler"
)

// Lower translates prog's functions into an unresolved instruction list.
// main is lowered first (so it starts at instruction 0) and ends in
// f_stop; every other declared function follows, each one prefixed with
// a label bound to its entry point and ending in the pop_copy/ret
// sequence a caller's `call` expects. Undefined identifiers and a
// missing `main` are recorded on ctx.Errors and cause Lower to fail, but
// do not stop the walk: every function is still lowered so every error
// in the program is reported.
func Lower(ctx *Context, prog *ast.Program) ([]UnresolvedInstruction, error) {
	var main *ast.Function
	var others []*ast.Function
	for _, fn := range prog.Functions {
		if fn.Name == "main" {
			main = fn
		} else {
			others = append(others, fn)
		}
	}

	var out []UnresolvedInstruction
	ok := true

	if main == nil {
		ctx.error(token.NoPos, "missing function `main`")
		ok = false
	} else {
		var bodyOK bool
		out, bodyOK = lowerExpr(ctx, main.Body, out)
		ok = ok && bodyOK
		out = append(out, emitted(compiler.FStopInsn{}))
	}

	for _, fn := range others {
		label := ctx.Labels.NewAnonymous()
		if !ctx.defineFunc(fn.Name, label) {
			ctx.error(fn.NamePos, "function `"+fn.Name+"` redeclared")
			ok = false
			continue
		}
		if err := ctx.Labels.SetPosition(label, uint32(len(out))); err != nil {
			panic(err) // unreachable: label was just allocated and unbound
		}

		marker := ctx.Stack.NewSubcontext()
		ctx.Stack.PushAnonymous() // the return address the caller's `call` pushed

		var bodyOK bool
		out, bodyOK = lowerExpr(ctx, fn.Body, out)
		ok = ok && bodyOK

		ctx.Stack.DropSubcontext(marker)
		ctx.Stack.PushAnonymous() // net effect of a call from the caller's view: one result

		out = append(out, emitted(compiler.PopCopyInsn{K: 1}))
		out = append(out, emitted(compiler.RetInsn{Shrink: 0, IPOffset: 0}))
	}

	ctx.Errors.Sort()
	if !ok {
		if err := ctx.Errors.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("lowering: pass failed")
	}
	return out, nil
}

// lowerExpr lowers e, appending its instructions to out, and reports
// whether e (and everything under it) lowered without error. On failure
// it still pushes one anonymous placeholder value so the compile-time
// stack stays balanced for the rest of the walk.
func lowerExpr(ctx *Context, e ast.Expr, out []UnresolvedInstruction) ([]UnresolvedInstruction, bool) {
	switch e := e.(type) {
	case *ast.IntLit:
		out = append(out, emitted(compiler.PushIInsn{N: e.Value}))
		ctx.Stack.PushAnonymous()
		return out, true

	case *ast.BoolLit:
		var v int32
		if e.Value {
			v = 1
		}
		out = append(out, emitted(compiler.PushIInsn{N: v}))
		ctx.Stack.PushAnonymous()
		return out, true

	case *ast.Ident:
		depth, found := ctx.Stack.Resolve(e.Name)
		if !found {
			ctx.error(e.NamePos, "undefined variable `"+e.Name+"`")
			ctx.Stack.PushAnonymous()
			return out, false
		}
		out = append(out, emitted(compiler.PushCopyInsn{K: depth}))
		ctx.Stack.PushAnonymous()
		return out, true

	case *ast.BinaryExpr:
		var leftOK, rightOK bool
		out, leftOK = lowerExpr(ctx, e.Left, out)
		out, rightOK = lowerExpr(ctx, e.Right, out)

		switch e.Op {
		case ast.Add:
			out = append(out, emitted(compiler.AddIInsn{}))
		case ast.Sub:
			out = append(out, emitted(compiler.NegInsn{}))
			out = append(out, emitted(compiler.AddIInsn{}))
		case ast.Mul:
			out = append(out, emitted(compiler.MulInsn{}))
		default:
			panic(fmt.Sprintf("lowering: unhandled binary operator %v", e.Op))
		}
		if err := ctx.Stack.PopTopAnonymous(); err != nil {
			panic(err) // unreachable: right operand just pushed an anonymous value
		}

		return out, leftOK && rightOK

	case *ast.IfExpr:
		var condOK bool
		out, condOK = lowerExpr(ctx, e.Cond, out)

		consequentStart := ctx.Labels.NewAnonymous()
		altStart := ctx.Labels.NewAnonymous()
		consequentEnd := ctx.Labels.NewAnonymous()

		out = append(out, unresolvedCondJmp{neg: consequentStart, null: altStart, pos: consequentStart})
		if err := ctx.Stack.PopTopAnonymous(); err != nil {
			panic(err)
		}

		if err := ctx.Labels.SetPosition(consequentStart, uint32(len(out))); err != nil {
			panic(err)
		}

		marker := ctx.Stack.NewSubcontext()

		var consOK bool
		out, consOK = lowerExpr(ctx, e.Consequent, out)
		out = append(out, unresolvedGoto{label: consequentEnd})

		ctx.Stack.DropSubcontext(marker)

		if err := ctx.Labels.SetPosition(altStart, uint32(len(out))); err != nil {
			panic(err)
		}

		var altOK bool
		out, altOK = lowerExpr(ctx, e.Alternative, out)

		ctx.Stack.DropSubcontext(marker)
		ctx.Stack.PushAnonymous()

		if err := ctx.Labels.SetPosition(consequentEnd, uint32(len(out))); err != nil {
			panic(err)
		}

		return out, condOK && consOK && altOK

	case *ast.LetExpr:
		marker := ctx.Stack.NewSubcontext()
		ok := true
		for _, b := range e.Bindings {
			var bindOK bool
			out, bindOK = lowerExpr(ctx, b.Value, out)
			ok = ok && bindOK
			if err := ctx.Stack.NameTopAnonymous(b.Name); err != nil {
				panic(err) // unreachable: the value just pushed is anonymous
			}
		}

		var bodyOK bool
		out, bodyOK = lowerExpr(ctx, e.Body, out)
		ok = ok && bodyOK

		n := uint16(len(e.Bindings))
		out = append(out, emitted(compiler.PopCopyInsn{K: n}))
		out = append(out, emitted(compiler.PopInsn{N: n - 1}))

		ctx.Stack.DropSubcontext(marker)
		ctx.Stack.PushAnonymous()

		return out, ok

	case *ast.BlockExpr:
		return lowerExpr(ctx, e.Inner, out)

	case *ast.BadExpr:
		out = append(out, emitted(compiler.PushIInsn{N: 0}))
		ctx.Stack.PushAnonymous()
		return out, false

	default:
		panic(fmt.Sprintf("lowering: unhandled expression type %T", e))
	}
}
