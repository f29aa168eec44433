package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jfa/internal/testutil"
)

func TestValidateValidFiles(t *testing.T) {
	a := writeProblem(t, "00000.json", testutil.Contested())
	b := writeProblem(t, "00001.yaml", testutil.NoOpportunity())

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{a, b})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "✓ "+a+": 2x2, 3 selectable, total value 19")
	assert.Contains(t, out, "✓ "+b+": 2x2, 0 selectable, total value 10")
}

func TestValidateValidFilesJSON(t *testing.T) {
	path := writeProblem(t, "00000.json", testutil.SingleEngagement())

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	var report ValidationReport
	resp := decodeResponse(t, buf, &report)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, report.Valid)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "single-engagement", report.Files[0].Problem)
	assert.Equal(t, 1, report.Files[0].Selectable)
}

func TestValidateInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	schemaBad := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schemaBad, []byte(`{
		"effectors": [{"capacity": -1}],
		"targets": [{"value": 1}],
		"opportunities": [[{"selectable": true, "p_success": 0.5}]]
	}`), 0644))
	shapeBad := filepath.Join(dir, "shape.yaml")
	require.NoError(t, os.WriteFile(shapeBad, []byte(`
effectors: [{capacity: 1}, {capacity: 1}]
targets: [{value: 1}]
opportunities: [[{selectable: true, p_success: 0.5}]]
`), 0644))
	good := writeProblem(t, "good.json", testutil.SingleEngagement())

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{schemaBad, shapeBad, good})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var report ValidationReport
	resp := decodeResponse(t, buf, &report)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
	assert.False(t, report.Valid)
	require.Len(t, report.Files, 3)

	assert.False(t, report.Files[0].Valid)
	assert.True(t, report.Files[0].Schema)
	assert.False(t, report.Files[1].Valid)
	assert.False(t, report.Files[1].Schema)
	assert.Contains(t, report.Files[1].Error, "opportunity rows")
	assert.True(t, report.Files[2].Valid)
}

func TestValidateUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problem.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0644))

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "✗ "+path)
}

func TestValidateRequiresArgs(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}
