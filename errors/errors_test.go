package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClassString(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.class.String())
	}
}

func TestWrapConvention(t *testing.T) {
	err := Wrap(ErrUnknownType, "Registry", "Instantiate", "definition lookup")
	require.Error(t, err)
	assert.Equal(t, "Registry.Instantiate: definition lookup failed: unknown component type", err.Error())
	assert.True(t, stderrors.Is(err, ErrUnknownType))

	assert.NoError(t, Wrap(nil, "Registry", "Instantiate", "definition lookup"))
}

func TestWrapInvalidClassification(t *testing.T) {
	err := WrapInvalid(ErrEmptyComposition, "Engine", "Compose", "request validation")
	require.Error(t, err)

	var ce *ClassifiedError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, ErrorInvalid, ce.Class)
	assert.Equal(t, "Engine", ce.Component)
	assert.Equal(t, "Compose", ce.Operation)
	assert.True(t, stderrors.Is(err, ErrEmptyComposition))
}

func TestClassifySentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"unknown type is invalid", ErrUnknownType, ErrorInvalid},
		{"duplicate type is invalid", ErrDuplicateType, ErrorInvalid},
		{"out of range is invalid", ErrPropertyOutOfRange, ErrorInvalid},
		{"component state is invalid", ErrInvalidComponentState, ErrorInvalid},
		{"empty composition is invalid", ErrEmptyComposition, ErrorInvalid},
		{"invalid config is fatal", ErrInvalidConfig, ErrorFatal},
		{"missing config is fatal", ErrMissingConfig, ErrorFatal},
		{"unknown errors default to transient", stderrors.New("boom"), ErrorTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassifiedErrorOverridesSentinel(t *testing.T) {
	// An explicit classification wins over sentinel-based classification.
	err := WrapFatal(ErrUnknownType, "Loader", "LoadDir", "definition registration")
	assert.True(t, IsFatal(err))
	assert.False(t, IsInvalid(err))
}

func TestNilErrorChecks(t *testing.T) {
	assert.False(t, IsInvalid(nil))
	assert.False(t, IsFatal(nil))
	assert.False(t, IsTransient(nil))
}
