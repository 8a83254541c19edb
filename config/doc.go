// Package config loads and validates engine configuration from YAML.
//
// Every section has working defaults: an empty file is a valid
// configuration, and loaded values override defaults field by field.
// Durations accept Go duration strings ("8ms", "5s").
package config
