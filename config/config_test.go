package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/emergence/errors"
	"github.com/c360/emergence/governor"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "v1", cfg.Scoring.Version)
	assert.Equal(t, governor.DefaultFullBuckets, cfg.Governor.FullBuckets)
}

func TestParseEmptyYieldsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
cache:
  capacity: 2048
  ttl: 30s
governor:
  high_water: 12ms
  demote_after: 5
detector:
  activation_threshold: 0.7
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, 2048, cfg.Cache.Capacity)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.Cache.TTL))
	assert.Equal(t, 12*time.Millisecond, time.Duration(cfg.Governor.HighWater))
	assert.Equal(t, 5, cfg.Governor.DemoteAfter)
	assert.Equal(t, 0.7, cfg.Detector.ActivationThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched sections keep defaults.
	assert.Equal(t, Default().Scoring, cfg.Scoring)
	assert.Equal(t, governor.DefaultPromoteAfter, cfg.Governor.PromoteAfter)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("cache:\n  capcity: 10\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := Parse([]byte("cache:\n  ttl: soon\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestValidateCrossFieldConstraints(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"inverted water marks", func(c *Config) {
			c.Governor.HighWater = Duration(time.Millisecond)
			c.Governor.LowWater = Duration(2 * time.Millisecond)
		}},
		{"threshold above one", func(c *Config) { c.Detector.ActivationThreshold = 1.5 }},
		{"negative capacity", func(c *Config) { c.Cache.Capacity = -1 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"unknown scoring version", func(c *Config) { c.Scoring.Version = "v2" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  capacity: 99\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Cache.Capacity)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConversions(t *testing.T) {
	cfg := Default()

	cc := cfg.Cache.ToCache()
	assert.Equal(t, cfg.Cache.Capacity, cc.Capacity)

	gc := cfg.Governor.ToGovernor()
	assert.Equal(t, governor.DefaultHighWater, gc.HighWater)
	assert.Equal(t, governor.DefaultReducedGroupSize, gc.ReducedGroupSize)
}
