package cmd

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emrgen/sweater"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNote(t *testing.T) {
	assert.Equal(t, "exists", note(sweater.Result{Existed: true}))
	assert.Equal(t, "removed 2", note(sweater.Result{Removed: []string{"a", "b"}}))
	assert.Empty(t, note(sweater.Result{}))
}

func TestDisplay(t *testing.T) {
	text := &sweater.Text{Parts: []string{"", " follows from ", ""}, References: []string{"x", "y"}}
	assert.Equal(t, "[1] follows from [2]", display(text))
	assert.Equal(t, "plain", display(&sweater.Text{Parts: []string{"plain"}}))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("usage")))
	assert.Equal(t, 1, exitCode(&sweater.Error{Status: http.StatusNotFound}))
	assert.Equal(t, 2, exitCode(&sweater.Error{Status: http.StatusInternalServerError}))
}

func TestReadInput(t *testing.T) {
	command := &cobra.Command{}
	command.SetIn(strings.NewReader("+\nfrom stdin"))

	input, err := readInput(command, nil)
	require.NoError(t, err)
	assert.Equal(t, "+\nfrom stdin", input)

	path := filepath.Join(t.TempDir(), "theses.txt")
	require.NoError(t, os.WriteFile(path, []byte("+\nfrom file"), 0o644))

	input, err = readInput(command, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "+\nfrom file", input)

	_, err = readInput(command, []string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
