package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/c360/emergence/engine"
	"github.com/c360/emergence/types"
)

// scenario is one named composition in a scenario file.
type scenario struct {
	Name    string         `yaml:"name"`
	Request engine.Request `yaml:",inline"`
}

// scenarioFile is the on-disk scenario format.
type scenarioFile struct {
	Compositions []scenario `yaml:"compositions"`
}

func loadScenarios(path string) ([]scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	if len(file.Compositions) == 0 {
		return nil, fmt.Errorf("scenario file %s declares no compositions", path)
	}
	for i, s := range file.Compositions {
		if s.Name == "" {
			file.Compositions[i].Name = fmt.Sprintf("composition-%d", i+1)
		}
	}
	return file.Compositions, nil
}

// outcome pairs a scenario name with its composed threat.
type outcome struct {
	Scenario string                `json:"scenario"`
	Threat   *types.ComposedThreat `json:"threat"`
}

// runScenarios composes every scenario, up to parallel at a time. The
// engine and its collaborators are shared across goroutines, which is
// exactly the concurrency contract they promise. Output order follows the
// scenario file regardless of completion order.
func runScenarios(
	ctx context.Context,
	eng *engine.Engine,
	scenarios []scenario,
	parallel int,
	applyDeltas bool,
	logger *slog.Logger,
) ([]outcome, error) {
	outcomes := make([]outcome, len(scenarios))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			threat, err := eng.Compose(ctx, s.Request)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", s.Name, err)
			}
			if applyDeltas {
				applied := threat.ApplyDeltas()
				logger.Debug("side effects applied", "scenario", s.Name, "deltas", applied)
			}
			logger.Info("scenario composed",
				"scenario", s.Name,
				"components", len(threat.Components),
				"behaviors", len(threat.Behaviors),
				"quality", threat.Metrics.Quality)

			mu.Lock()
			outcomes[i] = outcome{Scenario: s.Name, Threat: threat}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func writeOutcomes(w io.Writer, outcomes []outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomes); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
