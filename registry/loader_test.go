package registry

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/emergence/errors"
	"github.com/c360/emergence/types"
)

const validDocument = `
components:
  - type: airborne-transmission
    domain: biological
    emergence_potential: 0.8
    description: Pathogen spread through air circulation
    properties:
      rate:
        role: transmission
        default: 0.5
        min: 0
        max: 1
    affinities:
      water-contamination: 0.4
    profile:
      update_cost: 0.2
      memory_footprint: 128
      complexity: linear
  - type: water-contamination
    domain: environmental
    emergence_potential: 0.7
`

func TestParseValidDocument(t *testing.T) {
	defs, err := Parse([]byte(validDocument))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "airborne-transmission", defs[0].Type)
	assert.Equal(t, types.DomainBiological, defs[0].Domain)
	assert.Equal(t, types.RoleTransmission, defs[0].Properties["rate"].Role)
	assert.Equal(t, 0.4, defs[0].Affinities["water-contamination"])
	assert.Equal(t, types.ComplexityLinear, defs[0].Profile.Complexity)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing domain", "components:\n  - type: x\n"},
		{"unknown domain", "components:\n  - type: x\n    domain: astral\n"},
		{"potential above one", "components:\n  - type: x\n    domain: cyber\n    emergence_potential: 1.5\n"},
		{"unknown top-level key", "components: []\nextra: true\n"},
		{"empty document", "components: []\n"},
		{"unknown property field", "components:\n  - type: x\n    domain: cyber\n    properties:\n      p:\n        weight: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("components: [\n"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoadDirRegistersInOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"),
		[]byte("components:\n  - type: wildfire\n    domain: environmental\n    emergence_potential: 0.6\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"),
		[]byte("components:\n  - type: drought\n    domain: environmental\n    emergence_potential: 0.5\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("not yaml"), 0o600))

	defs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "drought", defs[0].Type)
	assert.Equal(t, "wildfire", defs[1].Type)

	reg := New()
	require.NoError(t, RegisterAll(reg, defs))
	assert.Equal(t, []string{"drought", "wildfire"}, reg.Types())
}

func TestRegisterAllReportsFailingType(t *testing.T) {
	reg := New()
	defs := []*types.ComponentDefinition{
		{Type: "drought", Domain: types.DomainEnvironmental, EmergencePotential: 0.5},
		{Type: "drought", Domain: types.DomainEnvironmental, EmergencePotential: 0.5},
	}

	err := RegisterAll(reg, defs)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrDuplicateType))
	assert.Contains(t, err.Error(), `"drought"`)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}
