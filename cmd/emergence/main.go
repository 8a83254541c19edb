// Package main implements the emergence command line tool: it loads
// component definitions, runs scenario compositions through the engine,
// and writes the composed threats as JSON.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/c360/emergence/cache"
	"github.com/c360/emergence/calculator"
	"github.com/c360/emergence/config"
	"github.com/c360/emergence/detector"
	"github.com/c360/emergence/engine"
	"github.com/c360/emergence/governor"
	"github.com/c360/emergence/metric"
	"github.com/c360/emergence/registry"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "emergence"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s (built %s)\n", appName, Version, BuildTime)
		return nil
	}
	if cliCfg.ShowHelp {
		printHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return err
	}

	reg, err := loadDefinitions(cliCfg.DefinitionsDir)
	if err != nil {
		return err
	}
	logger.Info("definitions loaded", "dir", cliCfg.DefinitionsDir, "types", reg.Len())

	if cliCfg.Validate {
		logger.Info("configuration and definitions are valid")
		return nil
	}

	metricsRegistry := metric.NewMetricsRegistry()
	eng, err := buildEngine(cfg, reg, metricsRegistry, logger)
	if err != nil {
		return err
	}

	var metricsServer *metric.Server
	if cliCfg.MetricsAddr != "" {
		metricsServer = metric.NewServer(cliCfg.MetricsAddr, "/metrics", metricsRegistry)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		logger.Info("metrics server listening", "addr", cliCfg.MetricsAddr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Stop(ctx); err != nil {
				logger.Warn("metrics server shutdown", "error", err)
			}
		}()
	}

	scenarios, err := loadScenarios(cliCfg.ScenarioPath)
	if err != nil {
		return err
	}
	logger.Info("scenario loaded", "path", cliCfg.ScenarioPath, "compositions", len(scenarios))

	outcomes, err := runScenarios(context.Background(), eng, scenarios, cliCfg.Parallel, cliCfg.ApplyDeltas, logger)
	if err != nil {
		return err
	}
	return writeOutcomes(os.Stdout, outcomes)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func loadDefinitions(dir string) (*registry.Registry, error) {
	defs, err := registry.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	reg := registry.New()
	if err := registry.RegisterAll(reg, defs); err != nil {
		return nil, fmt.Errorf("register definitions: %w", err)
	}
	return reg, nil
}

func buildEngine(
	cfg config.Config,
	reg *registry.Registry,
	metricsRegistry *metric.MetricsRegistry,
	logger *slog.Logger,
) (*engine.Engine, error) {
	interactionCache, err := cache.New(cfg.Cache.ToCache(),
		cache.WithMetrics(metricsRegistry, "interaction"))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	calc, err := calculator.New(reg, interactionCache, cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("create calculator: %w", err)
	}

	eng, err := engine.New(engine.Deps{
		Registry:   reg,
		Calculator: calc,
		Detector:   detector.New(cfg.Detector),
		Governor:   governor.New(cfg.Governor.ToGovernor()),
		Metrics:    metricsRegistry.CoreMetrics(),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return eng, nil
}
