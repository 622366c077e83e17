package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langweave/glyph/pkg/cli"
)

const programSource = `
chant double(n) then
  yield n * 2
end

yield double(21)
`

func withTempDir(t *testing.T) func() {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { require.NoError(t, os.Chdir(wd)) }
}

func TestRunFile_PrintsResult(t *testing.T) {
	restore := withTempDir(t)
	defer restore()

	path := filepath.Join(t.TempDir(), "program.glyph")
	require.NoError(t, os.WriteFile(path, []byte(programSource), 0644))

	var out, errs bytes.Buffer
	code := cli.RunFile(path, cli.RunOptions{Stdout: &out, Stderr: &errs})
	assert.Equal(t, 0, code)
	assert.Empty(t, errs.String())
	assert.Equal(t, "42", strings.TrimSpace(out.String()))
}

func TestRunFile_ReportsParseErrors(t *testing.T) {
	restore := withTempDir(t)
	defer restore()

	path := filepath.Join(t.TempDir(), "broken.glyph")
	require.NoError(t, os.WriteFile(path, []byte("chant ("), 0644))

	var out, errs bytes.Buffer
	code := cli.RunFile(path, cli.RunOptions{Stdout: &out, Stderr: &errs})
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, errs.String())
}

func TestREPL_EvaluatesEachLine(t *testing.T) {
	restore := withTempDir(t)
	defer restore()

	in := strings.NewReader("1 + 1\n2 * 3\n")
	var out, errs bytes.Buffer
	cli.REPL(in, cli.RunOptions{Stdout: &out, Stderr: &errs})
	assert.Empty(t, errs.String())
	assert.Contains(t, out.String(), "2")
	assert.Contains(t, out.String(), "6")
}
