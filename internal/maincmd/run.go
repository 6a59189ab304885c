package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/dyl/lang/compiler"
	"github.com/mna/dyl/lang/machine"
)

// Run implements the 'run' command: decode a bytecode file and
// execute it, printing the terminal value to stdout.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return printError(stdio, errors.New("run requires a single bytecode path"))
	}
	return runFile(ctx, stdio, args[0])
}

func runFile(ctx context.Context, stdio mainer.Stdio, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return printError(stdio, err)
	}

	insns, err := compiler.FromBytes(b)
	if err != nil {
		return printError(stdio, err)
	}

	v, err := machine.Run(ctx, &machine.Thread{Name: path}, insns)
	if err != nil {
		return printError(stdio, err)
	}

	fmt.Fprintln(stdio.Stdout, v)
	return nil
}
