package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/emergence/cache"
	"github.com/c360/emergence/calculator"
	"github.com/c360/emergence/detector"
	"github.com/c360/emergence/errors"
	"github.com/c360/emergence/governor"
)

// Duration is a time.Duration that unmarshals from YAML duration strings.
type Duration time.Duration

// UnmarshalYAML accepts "8ms" style strings or raw nanosecond integers.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return errors.WrapInvalid(
				fmt.Errorf("%w: bad duration %q", errors.ErrInvalidConfig, v),
				"Duration", "UnmarshalYAML", "parsing")
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(v)
	default:
		return errors.WrapInvalid(
			fmt.Errorf("%w: duration must be a string or integer", errors.ErrInvalidConfig),
			"Duration", "UnmarshalYAML", "parsing")
	}
	return nil
}

// MarshalYAML renders the duration as its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// CacheConfig sizes the interaction cache.
type CacheConfig struct {
	Capacity int      `yaml:"capacity"`
	TTL      Duration `yaml:"ttl"`
}

// ToCache converts to the cache package's config.
func (c CacheConfig) ToCache() cache.Config {
	return cache.Config{Capacity: c.Capacity, TTL: time.Duration(c.TTL)}
}

// GovernorConfig tunes the budget governor, with YAML-friendly durations.
type GovernorConfig struct {
	HighWater        Duration `yaml:"high_water"`
	LowWater         Duration `yaml:"low_water"`
	DemoteAfter      int      `yaml:"demote_after"`
	PromoteAfter     int      `yaml:"promote_after"`
	FullBuckets      int      `yaml:"full_buckets"`
	ReducedGroupSize int      `yaml:"reduced_group_size"`
}

// ToGovernor converts to the governor package's config.
func (g GovernorConfig) ToGovernor() governor.Config {
	return governor.Config{
		HighWater:        time.Duration(g.HighWater),
		LowWater:         time.Duration(g.LowWater),
		DemoteAfter:      g.DemoteAfter,
		PromoteAfter:     g.PromoteAfter,
		FullBuckets:      g.FullBuckets,
		ReducedGroupSize: g.ReducedGroupSize,
	}
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full engine configuration.
type Config struct {
	Scoring  calculator.ScoringConfig `yaml:"scoring"`
	Cache    CacheConfig              `yaml:"cache"`
	Detector detector.Config          `yaml:"detector"`
	Governor GovernorConfig           `yaml:"governor"`
	Logging  LoggingConfig            `yaml:"logging"`
}

// Default returns the configuration every section falls back to.
func Default() Config {
	return Config{
		Scoring: calculator.DefaultScoring(),
		Cache: CacheConfig{
			Capacity: cache.DefaultCapacity,
			TTL:      Duration(cache.DefaultTTL),
		},
		Detector: detector.Config{
			ActivationThreshold: detector.DefaultActivationThreshold,
			MaxGroupSize:        detector.DefaultMaxGroupSize,
		},
		Governor: GovernorConfig{
			HighWater:        Duration(governor.DefaultHighWater),
			LowWater:         Duration(governor.DefaultLowWater),
			DemoteAfter:      governor.DefaultDemoteAfter,
			PromoteAfter:     governor.DefaultPromoteAfter,
			FullBuckets:      governor.DefaultFullBuckets,
			ReducedGroupSize: governor.DefaultReducedGroupSize,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Parse decodes YAML over the defaults, rejecting unknown fields.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return cfg, nil
		}
		return Config{}, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err),
			"Config", "Parse", "decoding")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "Config", "Load", "reading file")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrap(err, "Config", "Load", fmt.Sprintf("parsing %s", path))
	}
	return cfg, nil
}

// Validate checks cross-field constraints the individual packages cannot.
func (c Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if c.Cache.Capacity < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: negative cache capacity", errors.ErrInvalidConfig),
			"Config", "Validate", "cache check")
	}
	if c.Cache.TTL < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: negative cache ttl", errors.ErrInvalidConfig),
			"Config", "Validate", "cache check")
	}
	if c.Detector.ActivationThreshold < 0 || c.Detector.ActivationThreshold > 1 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: activation threshold %v outside [0,1]",
				errors.ErrInvalidConfig, c.Detector.ActivationThreshold),
			"Config", "Validate", "detector check")
	}
	if c.Governor.HighWater > 0 && c.Governor.LowWater > 0 &&
		c.Governor.LowWater >= c.Governor.HighWater {
		return errors.WrapInvalid(
			fmt.Errorf("%w: governor low water %v must sit below high water %v",
				errors.ErrInvalidConfig,
				time.Duration(c.Governor.LowWater), time.Duration(c.Governor.HighWater)),
			"Config", "Validate", "governor check")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("%w: unknown log level %q", errors.ErrInvalidConfig, c.Logging.Level),
			"Config", "Validate", "logging check")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("%w: unknown log format %q", errors.ErrInvalidConfig, c.Logging.Format),
			"Config", "Validate", "logging check")
	}
	return nil
}

// Clone returns an independent copy.
func (c Config) Clone() Config {
	return c
}
