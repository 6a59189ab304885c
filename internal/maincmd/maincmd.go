// Package maincmd implements the dyl command-line tool: a thin,
// non-core collaborator that parses flags, dispatches to one of the
// core compiler/VM packages, and relays their result. It carries no
// invariant of its own.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "dyl"

var (
	shortUsage = fmt.Sprintf(`
usage: %s <command> <path>...
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s <command> <path>...
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the dyl bytecode language.

The <command> can be one of:
       compile <in.dyl> <out.bc>  Parse, check, lower and resolve the
                                  source file, writing the resulting
                                  bytecode to <out.bc>.
       run <program.bc>           Decode a bytecode file and execute
                                  it, printing the terminal value.
       tokenize <in.dyl>          Run the scanner only and print every
                                  token, for debugging.

Valid flag options are:
       -h --help                  Show this help and exit.
       -v --version               Print version and exit.
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}
	if _, ok := commands[c.args[0]]; !ok {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}
	return nil
}

// commands maps each dyl subcommand to its handler. Explicit and
// reflection-free: dyl's command set is small and fixed, unlike the
// teacher's extensible multi-command surface.
var commands = map[string]func(*Cmd, context.Context, mainer.Stdio, []string) error{
	"compile":  (*Cmd).Compile,
	"run":      (*Cmd).Run,
	"tokenize": (*Cmd).Tokenize,
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	fn := commands[c.args[0]]
	if err := fn(c, ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its own errors
		return mainer.Failure
	}
	return mainer.Success
}
