package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	ConfigPath     string
	DefinitionsDir string
	ScenarioPath   string
	LogLevel       string
	LogFormat      string
	Debug          bool
	MetricsAddr    string
	Parallel       int
	ApplyDeltas    bool
	ShowVersion    bool
	ShowHelp       bool
	Validate       bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("EMERGENCE_CONFIG", ""),
		"Path to engine configuration file, empty for defaults (env: EMERGENCE_CONFIG)")

	flag.StringVar(&cfg.DefinitionsDir, "definitions",
		getEnv("EMERGENCE_DEFINITIONS", "definitions"),
		"Directory of component definition YAML files (env: EMERGENCE_DEFINITIONS)")

	flag.StringVar(&cfg.ScenarioPath, "scenario",
		getEnv("EMERGENCE_SCENARIO", ""),
		"Scenario file of compositions to run (env: EMERGENCE_SCENARIO)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("EMERGENCE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: EMERGENCE_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("EMERGENCE_LOG_FORMAT", "text"),
		"Log format: json, text (env: EMERGENCE_LOG_FORMAT)")

	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("EMERGENCE_DEBUG", false),
		"Enable debug mode (env: EMERGENCE_DEBUG)")

	flag.StringVar(&cfg.MetricsAddr, "metrics-addr",
		getEnv("EMERGENCE_METRICS_ADDR", ""),
		"Prometheus listen address, empty to disable (env: EMERGENCE_METRICS_ADDR)")

	flag.IntVar(&cfg.Parallel, "parallel",
		getEnvInt("EMERGENCE_PARALLEL", 4),
		"Concurrent compositions (env: EMERGENCE_PARALLEL)")

	flag.BoolVar(&cfg.ApplyDeltas, "apply-deltas", false,
		"Materialize interaction side effects onto component properties")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false,
		"Validate configuration and definitions, then exit")

	flag.Usage = printHelp
	flag.Parse()

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if _, err := os.Stat(cfg.DefinitionsDir); err != nil {
		return fmt.Errorf("definitions directory not found: %s", cfg.DefinitionsDir)
	}
	if cfg.ScenarioPath == "" && !cfg.Validate {
		return fmt.Errorf("a scenario file is required (use -scenario)")
	}
	if cfg.ScenarioPath != "" {
		if _, err := os.Stat(cfg.ScenarioPath); err != nil {
			return fmt.Errorf("scenario file not found: %s", cfg.ScenarioPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	if cfg.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", cfg.Parallel)
	}
	return nil
}

func printHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Component Composition & Emergent Interaction Engine

Usage:
  %s -scenario scenarios/run.yaml [flags]

Runs every composition in the scenario file against the loaded component
definitions and writes the composed threats as JSON to stdout.

Flags:
`, appName, appName)
	flag.PrintDefaults()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
