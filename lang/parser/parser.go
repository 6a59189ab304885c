// Package parser implements the recursive-descent parser that transforms
// dyl source code into an abstract syntax tree.
package parser

import (
	"errors"
	"go/token"
	"strconv"

	"github.com/mna/dyl/lang/ast"
	"github.com/mna/dyl/lang/scanner"
	dyltoken "github.com/mna/dyl/lang/token"
)

// ParsingContext owns the error list accumulated while parsing a single
// file. The type checker and lowering passes use the same scanner.ErrorList
// type for their own diagnostics, each owning its own instance rather than
// sharing this one, so a later pass can still run and report its own errors
// even when parsing failed.
type ParsingContext struct {
	Errors scanner.ErrorList
}

// Parse parses src, registered in fset under filename, into a Program. It
// always returns a Program, even when parsing encountered errors: the
// returned error is non-nil iff ctx.Errors is non-empty after the walk.
func Parse(fset *token.FileSet, filename string, src []byte) (*ParsingContext, *ast.Program, error) {
	ctx := &ParsingContext{}

	var p parser
	p.ctx = ctx
	p.file = fset.AddFile(filename, -1, len(src))
	p.sc.Init(p.file, src, ctx.Errors.Add)
	p.advance()

	prog := p.parseProgram()

	ctx.Errors.Sort()
	return ctx, prog, ctx.Errors.Err()
}

// errPanicMode is used with panic/recover to unwind out of a malformed
// function body up to the Program loop, which then skips ahead to the next
// 'fn' (or EOF) and keeps parsing.
var errPanicMode = errors.New("panic mode")

type parser struct {
	ctx  *ParsingContext
	file *token.File
	sc   scanner.Scanner

	tok dyltoken.Token
	pos token.Pos
	lit string

	// lastEndPos is the position just past the most recently consumed
	// closing brace, used to set Function.EndPos.
	lastEndPos token.Pos
}

func (p *parser) advance() {
	p.tok, p.pos, p.lit = p.sc.Scan()
}

func (p *parser) error(pos token.Pos, msg string) {
	p.ctx.Errors.Add(p.file.Position(pos), msg)
}

func (p *parser) errorExpected(pos token.Pos, what string) {
	msg := "expected " + what
	if pos == p.pos {
		if p.lit != "" {
			msg += ", found " + p.lit
		} else {
			msg += ", found " + p.tok.GoString()
		}
	}
	p.error(pos, msg)
}

// expect consumes the current token if it matches tok, recording an error
// and entering panic mode otherwise.
func (p *parser) expect(tok dyltoken.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorExpected(pos, tok.GoString())
		panic(errPanicMode)
	}
	p.advance()
	return pos
}

// expectSoft is like expect but for the two recoverable tokens named in the
// let-binding grammar ('=' and ';'): on mismatch it records the diagnostic
// and returns without consuming anything or entering panic mode, treating
// the token as if it had been present.
func (p *parser) expectSoft(tok dyltoken.Token) {
	if p.tok != tok {
		p.errorExpected(p.pos, tok.GoString())
		return
	}
	p.advance()
}

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.tok != dyltoken.EOF {
		fn := p.parseFunction()
		if fn != nil {
			prog.Functions = append(prog.Functions, fn)
		}
	}
	return prog
}

func (p *parser) parseFunction() (fn *ast.Function) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			fn = nil
			p.skipToNextFunction()
		}
	}()

	fnPos := p.expect(dyltoken.FN)
	namePos := p.pos
	name := p.expectIdent()
	p.expect(dyltoken.LPAREN)
	p.expect(dyltoken.RPAREN)
	body := p.parseBlock()
	endPos := p.lastEndPos

	return &ast.Function{
		Name:    name,
		NamePos: namePos,
		Body:    body,
		FnPos:   fnPos,
		EndPos:  endPos,
	}
}

// skipToNextFunction advances past tokens until the next 'fn' keyword or
// EOF, so the Program loop can resume parsing after a malformed function.
func (p *parser) skipToNextFunction() {
	for p.tok != dyltoken.FN && p.tok != dyltoken.EOF {
		p.advance()
	}
}

func (p *parser) expectIdent() string {
	if p.tok != dyltoken.IDENT {
		p.errorExpected(p.pos, dyltoken.IDENT.GoString())
		panic(errPanicMode)
	}
	lit := p.lit
	p.advance()
	return lit
}

func (p *parser) parseBlock() *ast.BlockExpr {
	lbrace := p.expect(dyltoken.LBRACE)

	var inner ast.Expr
	if p.tok == dyltoken.LET {
		inner = p.parseBindings()
	} else {
		inner = p.parseExpr()
	}

	rbrace := p.expect(dyltoken.RBRACE)
	p.lastEndPos = rbrace + 1
	return &ast.BlockExpr{Inner: inner, LBracePos: lbrace, RBracePos: rbrace}
}

func (p *parser) parseBindings() *ast.LetExpr {
	letPos := p.pos
	var bindings []*ast.Binding
	for p.tok == dyltoken.LET {
		p.advance() // consume 'let'
		namePos := p.pos
		name := p.expectIdent()
		p.expectSoft(dyltoken.ASSIGN)
		value := p.parseExpr()
		p.expectSoft(dyltoken.SEMI)
		bindings = append(bindings, &ast.Binding{Name: name, NamePos: namePos, Value: value})
	}
	body := p.parseExpr()
	return &ast.LetExpr{Bindings: bindings, Body: body, LetPos: letPos}
}

// parseExpr parses the additive precedence level: '+' and '-' are
// left-associative and bind less tightly than '*'.
func (p *parser) parseExpr() ast.Expr {
	left := p.parseMul()
	for p.tok == dyltoken.PLUS || p.tok == dyltoken.MINUS {
		op, opPos := ast.Add, p.pos
		if p.tok == dyltoken.MINUS {
			op = ast.Sub
		}
		p.advance()
		right := p.parseMul()
		left = &ast.BinaryExpr{Left: left, Right: right, Op: op, OpPos: opPos}
	}
	return left
}

// parseMul parses the multiplicative precedence level: '*' is
// left-associative and binds tighter than '+'/'-'.
func (p *parser) parseMul() ast.Expr {
	left := p.parseAtomic()
	for p.tok == dyltoken.STAR {
		opPos := p.pos
		p.advance()
		right := p.parseAtomic()
		left = &ast.BinaryExpr{Left: left, Right: right, Op: ast.Mul, OpPos: opPos}
	}
	return left
}

// parseAtomic parses a signed integer literal, a boolean literal, an if
// expression, a nested block, or an identifier. Unary minus is accepted
// only here, as part of an integer literal, never as a prefix operator on
// an arbitrary expression (see spec Open Questions).
func (p *parser) parseAtomic() ast.Expr {
	switch p.tok {
	case dyltoken.INT:
		pos, lit := p.pos, p.lit
		p.advance()
		return &ast.IntLit{Value: p.parseIntLit(pos, lit, false), ValuePos: pos}

	case dyltoken.MINUS:
		minusPos := p.pos
		p.advance()
		if p.tok != dyltoken.INT {
			p.errorExpected(p.pos, dyltoken.INT.GoString())
			return &ast.BadExpr{From: minusPos, To: p.pos}
		}
		lit := p.lit
		p.advance()
		return &ast.IntLit{Value: p.parseIntLit(minusPos, lit, true), ValuePos: minusPos}

	case dyltoken.TRUE:
		pos := p.pos
		p.advance()
		return &ast.BoolLit{Value: true, ValuePos: pos}

	case dyltoken.FALSE:
		pos := p.pos
		p.advance()
		return &ast.BoolLit{Value: false, ValuePos: pos}

	case dyltoken.IDENT:
		pos, lit := p.pos, p.lit
		p.advance()
		return &ast.Ident{Name: lit, NamePos: pos}

	case dyltoken.IF:
		return p.parseIf()

	case dyltoken.LBRACE:
		return p.parseBlock()

	default:
		pos := p.pos
		p.errorExpected(pos, "expression")
		panic(errPanicMode)
	}
}

func (p *parser) parseIf() ast.Expr {
	ifPos := p.expect(dyltoken.IF)
	cond := p.parseExpr()
	consequent := p.parseBlock()
	p.expect(dyltoken.ELSE)
	alternative := p.parseBlock()
	return &ast.IfExpr{Cond: cond, Consequent: consequent, Alternative: alternative, IfPos: ifPos}
}

func (p *parser) parseIntLit(pos token.Pos, lit string, negative bool) int32 {
	v, err := strconv.ParseInt(lit, 10, 32)
	if err != nil {
		p.error(pos, "integer literal out of range: "+lit)
		return 0
	}
	if negative {
		v = -v
	}
	return int32(v)
}
