package registry

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/emergence/errors"
	"github.com/c360/emergence/types"
)

func testDefinition(typeName string) *types.ComponentDefinition {
	return &types.ComponentDefinition{
		Type:               typeName,
		Domain:             types.DomainEnvironmental,
		EmergencePotential: 0.7,
		Properties: map[string]types.PropertySpec{
			"intensity": {Role: types.RoleTransmission, Default: 0.4, Min: 0, Max: 1},
			"duration":  {Role: types.RoleNeutral, Default: 10, Min: 1, Max: 100},
		},
		Affinities: map[string]float64{"wildfire": 0.5},
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(testDefinition("drought")))

	err := reg.Register(testDefinition("drought"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrDuplicateType))

	// Explicit override replaces the definition.
	updated := testDefinition("drought")
	updated.EmergencePotential = 0.9
	require.NoError(t, reg.Register(updated, Override()))

	def, ok := reg.Definition("drought")
	require.True(t, ok)
	assert.Equal(t, 0.9, def.EmergencePotential)
}

func TestRegisterRejectsInvalidDefinition(t *testing.T) {
	reg := New()
	def := testDefinition("drought")
	def.Domain = "astral"

	err := reg.Register(def)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidDefinition))
	assert.Equal(t, 0, reg.Len())
}

func TestDefinitionIsolation(t *testing.T) {
	reg := New()
	original := testDefinition("drought")
	require.NoError(t, reg.Register(original))

	// Mutating either the input or the returned copy must not affect the
	// registered definition.
	original.Affinities["wildfire"] = -1
	fetched, ok := reg.Definition("drought")
	require.True(t, ok)
	fetched.Properties["intensity"] = types.PropertySpec{Default: 99, Min: 0, Max: 100}

	again, ok := reg.Definition("drought")
	require.True(t, ok)
	assert.Equal(t, 0.5, again.Affinities["wildfire"])
	assert.Equal(t, 0.4, again.Properties["intensity"].Default)
}

func TestInstantiateDefaultsAndOverrides(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(testDefinition("drought")))

	comp, warnings, err := reg.Instantiate("drought", map[string]float64{"intensity": 0.8})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NotEmpty(t, comp.ID)
	assert.Equal(t, "drought", comp.Type)
	assert.Equal(t, types.DomainEnvironmental, comp.Domain)
	assert.Equal(t, 0.8, comp.Properties["intensity"])
	assert.Equal(t, 10.0, comp.Properties["duration"])
	assert.Equal(t, 0.7, comp.EmergencePotential)

	// Each instantiation yields a distinct instance.
	other, _, err := reg.Instantiate("drought", nil)
	require.NoError(t, err)
	assert.NotEqual(t, comp.ID, other.ID)
}

func TestInstantiateClampsOutOfRange(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(testDefinition("drought")))

	comp, warnings, err := reg.Instantiate("drought", map[string]float64{
		"intensity": 1.5,
		"duration":  0,
	})
	require.NoError(t, err)
	require.Len(t, warnings, 2)

	// Warnings are sorted by property for determinism.
	assert.Equal(t, "duration", warnings[0].Property)
	assert.Equal(t, "intensity", warnings[1].Property)
	assert.Equal(t, 1.0, comp.Properties["intensity"])
	assert.Equal(t, 1.0, comp.Properties["duration"])
}

func TestInstantiateUnknownType(t *testing.T) {
	reg := New()
	_, _, err := reg.Instantiate("phantom", nil)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownType))
}

func TestInstantiateUnknownProperty(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(testDefinition("drought")))

	_, _, err := reg.Instantiate("drought", map[string]float64{"velocity": 1})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownProperty))
}

func TestAffinitySymmetric(t *testing.T) {
	reg := New()
	drought := testDefinition("drought")
	wildfire := testDefinition("wildfire")
	wildfire.Affinities = map[string]float64{"drought": 0.3}
	require.NoError(t, reg.Register(drought))
	require.NoError(t, reg.Register(wildfire))

	// Both directions declared: mean of the two priors, either way round.
	assert.InDelta(t, 0.4, reg.Affinity("drought", "wildfire"), 1e-9)
	assert.InDelta(t, 0.4, reg.Affinity("wildfire", "drought"), 1e-9)
}

func TestAffinityDefaults(t *testing.T) {
	reg := New()
	drought := testDefinition("drought")
	require.NoError(t, reg.Register(drought))

	// Single direction declared.
	require.NoError(t, reg.Register(&types.ComponentDefinition{
		Type: "wildfire", Domain: types.DomainEnvironmental, EmergencePotential: 0.6,
	}))
	assert.Equal(t, 0.5, reg.Affinity("drought", "wildfire"))

	// Undeclared pair and unknown types are neutral.
	assert.Equal(t, 0.0, reg.Affinity("drought", "drought"))
	assert.Equal(t, 0.0, reg.Affinity("phantom", "ghost"))
}

func TestTypesSorted(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(testDefinition("wildfire")))
	require.NoError(t, reg.Register(testDefinition("drought")))

	assert.Equal(t, []string{"drought", "wildfire"}, reg.Types())
	assert.Equal(t, 2, reg.Len())
}
