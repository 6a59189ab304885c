package maincmd

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/dyl/lang/scanner"
	dyltoken "github.com/mna/dyl/lang/token"
)

// Tokenize implements the 'tokenize' command: run the scanner alone
// over a single source file and print every token, for debugging.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return printError(stdio, errors.New("tokenize requires a single source path"))
	}
	return tokenizeFile(stdio, args[0])
}

func tokenizeFile(stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return printError(stdio, err)
	}

	if err := tokenizeSource(stdio.Stdout, path, src); err != nil {
		scanner.PrintError(stdio.Stderr, err)
		return err
	}
	return nil
}

// tokenizeSource scans src (registered under name) and writes one line
// per token to w. The literal text is only printed for IDENT and INT,
// the two token kinds that carry one; every keyword and punctuation
// token prints its kind alone even though the scanner happens to set
// Lit for keywords too.
func tokenizeSource(w io.Writer, name string, src []byte) error {
	fset := token.NewFileSet()
	file := fset.AddFile(name, -1, len(src))

	var errs scanner.ErrorList
	toks := scanner.ScanFile(file, src, errs.Add)
	for _, t := range toks {
		pos := file.Position(t.Pos)
		if (t.Token == dyltoken.IDENT || t.Token == dyltoken.INT) && t.Lit != "" {
			fmt.Fprintf(w, "%s: %s %s\n", pos, t.Token, t.Lit)
		} else {
			fmt.Fprintf(w, "%s: %s\n", pos, t.Token)
		}
	}

	return errs.Err()
}
