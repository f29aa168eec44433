package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/jfa/internal/dataset"
	"github.com/roach88/jfa/internal/model"
)

// writeProblem saves p as name in a fresh temp dir and returns the path.
func writeProblem(t *testing.T, name string, p *model.Problem) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, dataset.Save(path, p))
	return path
}

// decodeResponse decodes a JSON CLIResponse and its data into data.
func decodeResponse(t *testing.T, buf *bytes.Buffer, data any) CLIResponse {
	t.Helper()
	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw), buf.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.CLIResponse
}
