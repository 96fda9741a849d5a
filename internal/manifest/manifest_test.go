package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoutes/chapel/internal/errors"
)

const pointTOML = `
[[module]]
name = "Geometry"
uses = ["Base"]

  [[module.type]]
  kind = "record"
  name = "Point"

    [[module.type.field]]
    name = "x"
    type = "int"
    default = true

    [[module.type.field]]
    name = "t"
    kind = "type"

  [[module.type]]
  kind = "enum"
  name = "Color"
  constants = ["red", "green"]

  [[module.proc]]
  name = "=="
  operator = true

    [[module.proc.formal]]
    name = "a"
    type = "Point"

    [[module.proc.formal]]
    name = "b"
    type = "Point"
`

const pointYAML = `
module:
  - name: Geometry
    uses: [Base]
    type:
      - kind: record
        name: Point
        field:
          - {name: x, type: int, default: true}
          - {name: t, kind: type}
      - kind: enum
        name: Color
        constants: [red, green]
    proc:
      - name: "=="
        operator: true
        formal:
          - {name: a, type: Point}
          - {name: b, type: Point}
`

func TestLoadFormats(t *testing.T) {
	cases := []struct {
		file string
		body string
	}{
		{"prog.toml", pointTOML},
		{"prog.yaml", pointYAML},
		{"prog.yml", pointYAML},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), tc.file)
			require.NoError(t, os.WriteFile(p, []byte(tc.body), 0o644))

			m, err := Load(p)
			require.NoError(t, err)
			assert.Equal(t, p, m.Path)
			require.Len(t, m.Modules, 1)

			mod := m.Modules[0]
			assert.Equal(t, "Geometry", mod.Name)
			assert.Equal(t, []string{"Base"}, mod.Uses)
			require.Len(t, mod.Types, 2)
			assert.Equal(t, "record", mod.Types[0].Kind)
			assert.Equal(t, []Field{
				{Name: "x", Type: "int", Default: true},
				{Name: "t", Kind: "type"},
			}, mod.Types[0].Fields)
			assert.Equal(t, []string{"red", "green"}, mod.Types[1].Constants)
			require.Len(t, mod.Procs, 1)
			assert.True(t, mod.Procs[0].Operator)
			assert.Len(t, mod.Procs[0].Formals, 2)
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode([]byte("[[module]]\nname = \"M\"\nnmae = \"x\"\n"), FormatTOML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nmae")
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = Decode([]byte("module:\n  - name: M\n    nmae: x\n"), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nmae")
}

func TestDecodeEmptyYAML(t *testing.T) {
	m, err := Decode(nil, FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, m.Modules)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("prog.json")
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), ".toml")

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read program description")

	p := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(p, []byte("[[module]\n"), 0o644))
	_, err = Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid TOML")
}
