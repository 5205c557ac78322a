package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popdemes/demes/internal/cli"
)

const minimalYAML = `
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 100
`

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestResolveCommandPrintsCanonicalForm(t *testing.T) {
	path := writeTempFile(t, "model.yaml", minimalYAML)
	out, err := runCommand(t, "resolve", path)
	require.NoError(t, err)
	assert.Contains(t, out, "\"A\"")
}

func TestResolveCommandHashOnly(t *testing.T) {
	path := writeTempFile(t, "model.yaml", minimalYAML)
	out, err := runCommand(t, "resolve", "--hash-only", path)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.NotContains(t, out, "\n\n")
}

func TestValidateCommandAcceptsWellFormedDocument(t *testing.T) {
	path := writeTempFile(t, "model.yaml", minimalYAML)
	out, err := runCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
}

func TestValidateCommandRejectsUnknownField(t *testing.T) {
	path := writeTempFile(t, "model.yaml", `
demes:
  - name: A
    bogus: true
    epochs:
      - start_size: 100
`)
	out, err := runCommand(t, "validate", path)
	require.Error(t, err)
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitFailure, exitErr.Code)
	assert.Contains(t, out, "invalid")
}

func TestConvertCommandToIntegerGenerations(t *testing.T) {
	path := writeTempFile(t, "model.yaml", `
time_units: years
generation_time: 25
demes:
  - name: A
    start_time: 1000
    epochs:
      - start_size: 100
        end_time: 0
`)
	out, err := runCommand(t, "convert", "--integer", path)
	require.NoError(t, err)
	assert.Contains(t, out, "\"time_units\":\"generations\"")
}

func TestResolveCommandMissingFileExits2(t *testing.T) {
	_, err := runCommand(t, "resolve", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	path := writeTempFile(t, "model.yaml", minimalYAML)
	_, err := runCommand(t, "--format", "xml", "resolve", path)
	require.Error(t, err)
}
