package maincmd

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/dyl/lang/compiler"
	"github.com/mna/dyl/lang/lowering"
	"github.com/mna/dyl/lang/parser"
	"github.com/mna/dyl/lang/scanner"
	"github.com/mna/dyl/lang/types"
)

// Compile implements the 'compile' command: parse, type-check, lower
// and resolve a single source file, writing the resulting bytecode to
// the second argument.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 2 {
		return printError(stdio, errors.New("compile requires an input path and an output path"))
	}
	return compileFile(stdio, args[0], args[1])
}

func compileFile(stdio mainer.Stdio, inPath, outPath string) error {
	src, err := os.ReadFile(inPath)
	if err != nil {
		return printError(stdio, err)
	}

	fset := token.NewFileSet()
	pctx, prog, err := parser.Parse(fset, inPath, src)
	if err != nil {
		scanner.PrintError(stdio.Stderr, pctx.Errors.Err())
		return err
	}

	if len(prog.Functions) == 0 {
		return printError(stdio, fmt.Errorf("%s: no function declarations", inPath))
	}
	file := fset.File(prog.Functions[0].FnPos)

	if _, err := types.Check(file, prog); err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}

	lctx := lowering.NewContext(file)
	unresolved, err := lowering.Lower(lctx, prog)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}

	insns, err := lowering.Resolve(lctx, unresolved)
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}

	if err := os.WriteFile(outPath, compiler.EncodeMultiple(insns), 0o644); err != nil {
		return printError(stdio, err)
	}
	return nil
}
