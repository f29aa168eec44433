package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jfa/internal/model"
	"github.com/roach88/jfa/internal/testutil"
)

func TestNaming(t *testing.T) {
	tests := []struct {
		name   string
		naming Naming
		index  int
		want   string
	}{
		{"defaults", Naming{}, 7, "00007.json"},
		{"prefix and suffix", Naming{Prefix: "p_", Suffix: "_x", Digits: 3}, 42, "p_042_x.json"},
		{"yaml", Naming{Ext: ExtYAML, Digits: 2}, 5, "05.yaml"},
		{"wider than digits", Naming{Digits: 2}, 12345, "12345.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.naming.Filename(tt.index))
		})
	}

	n := Naming{Dir: "3x9", Prefix: "a_", Suffix: "_"}
	assert.Equal(t, filepath.Join("3x9", "a_00001_.json"), n.Path(1))
	assert.Equal(t, filepath.Join("3x9", "solutions_a_.csv"), n.DefaultCSVName())
	assert.Equal(t, "3x9", DefaultDir(3, 9))
}

func TestSaveLoad(t *testing.T) {
	for _, ext := range []string{ExtJSON, ExtYAML, ExtYML} {
		t.Run(ext, func(t *testing.T) {
			p := testutil.Contested()
			path := filepath.Join(t.TempDir(), "nested", "contested"+ext)

			require.NoError(t, Save(path, p))
			assert.True(t, Exists(path))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, p, got)
			assert.Equal(t, p.ID(), got.ID())
		})
	}
}

func TestLoad_NameDefaultsToFileStem(t *testing.T) {
	p := testutil.SingleEngagement()
	p.Name = ""
	path := filepath.Join(t.TempDir(), "00003.json")
	require.NoError(t, Save(path, p))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "00003", got.Name)
}

func TestLoad_Fixtures(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "problems", "valid.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "two-by-two", p.Name)
	assert.Equal(t, []model.Effector{{Capacity: 1}, {Capacity: 2}}, p.Effectors)
	assert.True(t, p.Opportunities[1][0].Selectable)
	assert.Equal(t, 0.75, p.Opportunities[1][0].PSuccess)

	_, err = Load(filepath.Join("testdata", "problems", "valid.json"))
	require.NoError(t, err)
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"probability above one", "p.json",
			`{"effectors":[{"capacity":1}],"targets":[{"value":5}],"opportunities":[[{"selectable":true,"p_success":1.5}]]}`},
		{"fractional capacity", "p.json",
			`{"effectors":[{"capacity":1.5}],"targets":[{"value":5}],"opportunities":[[{"selectable":true,"p_success":0.5}]]}`},
		{"unknown field", "p.json",
			`{"effectors":[],"targets":[],"opportunities":[],"extra":1}`},
		{"missing selectable", "p.yaml",
			"effectors: [{capacity: 1}]\ntargets: [{value: 5}]\nopportunities: [[{p_success: 0.5}]]\n"},
		{"negative value", "p.yml",
			"effectors: [{capacity: 1}]\ntargets: [{value: -5}]\nopportunities: [[{selectable: true, p_success: 0.5}]]\n"},
		{"not json", "p.json", `{"effectors": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, IsSchemaError(err), "got %v", err)
		})
	}
}

func TestLoad_DimensionMismatch(t *testing.T) {
	// Schema-valid but the row is one column short.
	path := filepath.Join(t.TempDir(), "p.json")
	content := `{"effectors":[{"capacity":1}],"targets":[{"value":5},{"value":6}],` +
		`"opportunities":[[{"selectable":true,"p_success":0.5}]]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrInvalidProblem)
	assert.False(t, IsSchemaError(err))
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Load("problem.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, Save(filepath.Join(t.TempDir(), "p.txt"), testutil.Contested()), ErrUnsupportedFormat)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, Exists(filepath.Join(t.TempDir(), "absent.json")))
}
