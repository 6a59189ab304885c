package maincmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/mna/dyl/internal/filetest"
)

var updateTokenizeTests = flag.Bool("test.update-tokenize-tests", false, "update the tokenize golden files")

// TestTokenizeGolden runs every testdata/*.dyl fixture through the
// scanner and compares the token listing against its golden .want
// file, following the teacher's internal/filetest convention.
func TestTokenizeGolden(t *testing.T) {
	const dir = "testdata"
	fis := filetest.SourceFiles(t, dir, ".dyl")
	require.NotEmpty(t, fis)

	for _, fi := range fis {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			require.NoError(t, err)

			var buf bytes.Buffer
			err = tokenizeSource(&buf, fi.Name(), src)
			require.NoError(t, err)

			filetest.DiffOutput(t, fi, buf.String(), dir, updateTokenizeTests)
		})
	}
}

// TestCompileRunRoundTrip exercises the compile and run commands
// together: compiling a source file to bytecode and then running that
// bytecode must reproduce the value the VM computes for the source
// directly.
func TestCompileRunRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "prog.dyl")
	bcPath := filepath.Join(dir, "prog.bc")
	require.NoError(t, os.WriteFile(srcPath, []byte("fn main() { let a = 40; let b = 2; a + b }\n"), 0o644))

	var compileErrs bytes.Buffer
	compileStdio := mainer.Stdio{Stdout: &bytes.Buffer{}, Stderr: &compileErrs}
	require.NoError(t, compileFile(compileStdio, srcPath, bcPath))
	require.Empty(t, compileErrs.String())

	var out, runErrs bytes.Buffer
	runStdio := mainer.Stdio{Stdout: &out, Stderr: &runErrs}
	require.NoError(t, runFile(context.Background(), runStdio, bcPath))
	require.Empty(t, runErrs.String())
	require.Equal(t, "42\n", out.String())
}

func TestCompileReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "bad.dyl")
	bcPath := filepath.Join(dir, "bad.bc")
	require.NoError(t, os.WriteFile(srcPath, []byte("fn main( { 1 }\n"), 0o644))

	var out, errs bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errs}
	err := compileFile(stdio, srcPath, bcPath)
	require.Error(t, err)
	require.NotEmpty(t, errs.String())

	_, statErr := os.Stat(bcPath)
	require.True(t, os.IsNotExist(statErr))
}
