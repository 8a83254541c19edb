package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360/emergence/calculator"
	"github.com/c360/emergence/detector"
	"github.com/c360/emergence/errors"
	"github.com/c360/emergence/governor"
	"github.com/c360/emergence/metric"
	"github.com/c360/emergence/registry"
	"github.com/c360/emergence/types"
)

// ComponentRequest names one component type to instantiate, with optional
// property overrides merged onto the definition's defaults.
type ComponentRequest struct {
	Type      string             `json:"type" yaml:"type"`
	Overrides map[string]float64 `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Request is one composition: the components to combine and the ambient
// context they combine under.
type Request struct {
	Components []ComponentRequest `json:"components" yaml:"components"`
	Context    calculator.Context `json:"context" yaml:"context"`
}

// Deps are the engine's collaborators. Registry, Calculator, Detector, and
// Governor are required; Metrics and Logger are optional.
type Deps struct {
	Registry   *registry.Registry
	Calculator *calculator.Calculator
	Detector   *detector.Detector
	Governor   *governor.Governor

	Metrics *metric.Metrics
	Logger  *slog.Logger
}

// Engine composes threats from component requests. Safe for concurrent use:
// all collaborators are internally synchronized and Compose keeps its
// working state on the stack.
type Engine struct {
	registry   *registry.Registry
	calculator *calculator.Calculator
	detector   *detector.Detector
	governor   *governor.Governor

	metrics *engineMetrics
	logger  *slog.Logger
}

// New creates an engine, rejecting missing required collaborators.
func New(deps Deps) (*Engine, error) {
	required := map[string]bool{
		"registry":   deps.Registry == nil,
		"calculator": deps.Calculator == nil,
		"detector":   deps.Detector == nil,
		"governor":   deps.Governor == nil,
	}
	for name, missing := range required {
		if missing {
			return nil, errors.WrapFatal(
				fmt.Errorf("%w: %s", errors.ErrMissingConfig, name),
				"Engine", "New", "dependency check")
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry:   deps.Registry,
		calculator: deps.Calculator,
		detector:   deps.Detector,
		governor:   deps.Governor,
		metrics:    newEngineMetrics(deps.Metrics),
		logger:     logger,
	}, nil
}

// Compose builds one threat from the request: instantiate every component,
// compute the full pairwise interaction matrix, discover emergent
// behaviors, and assemble the result with a performance snapshot. Any
// instantiation failure aborts the whole composition; there is no partial
// threat. Pairs that cannot be scored because of invalid component state
// are absorbed into neutral results so one bad component never blocks
// discovery among the rest.
func (e *Engine) Compose(ctx context.Context, req Request) (*types.ComposedThreat, error) {
	total := startStage()

	if len(req.Components) == 0 {
		e.metrics.recordFailure()
		return nil, errors.WrapInvalid(errors.ErrEmptyComposition, "Engine", "Compose", "request validation")
	}

	quality, budget := e.governor.Plan()

	stage := startStage()
	components, warnings, err := e.instantiate(req.Components)
	if err != nil {
		e.metrics.recordFailure()
		return nil, err
	}
	instantiateTime := stage.elapsed()

	if err := ctx.Err(); err != nil {
		e.metrics.recordFailure()
		return nil, errors.WrapTransient(err, "Engine", "Compose", "context check")
	}

	stage = startStage()
	interactions, pairStats, err := e.calculatePairs(components, req.Context, budget)
	if err != nil {
		e.metrics.recordFailure()
		return nil, err
	}
	calculateTime := stage.elapsed()

	if err := ctx.Err(); err != nil {
		e.metrics.recordFailure()
		return nil, errors.WrapTransient(err, "Engine", "Compose", "context check")
	}

	stage = startStage()
	discovery := e.detector.Discover(components, interactions, budget)
	discoverTime := stage.elapsed()

	totalTime := total.elapsed()
	threat := &types.ComposedThreat{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		Components:   components,
		Interactions: interactions,
		Behaviors:    discovery.Behaviors,
		Warnings:     warnings,
		Metrics: types.CompositionMetrics{
			TotalTime:       totalTime,
			InstantiateTime: instantiateTime,
			CalculateTime:   calculateTime,
			DiscoverTime:    discoverTime,
			Pairs:           len(interactions),
			CacheHits:       pairStats.hits,
			CacheMisses:     pairStats.misses,
			CacheHitRatio:   pairStats.hitRatio(),
			DegradedPairs:   pairStats.degraded,
			GroupsEvaluated: discovery.GroupsEvaluated,
			Quality:         quality.String(),
		},
	}

	e.governor.Observe(totalTime)
	e.metrics.recordSuccess(threat, quality)
	e.logger.Debug("composition complete",
		"threat_id", threat.ID,
		"components", len(threat.Components),
		"pairs", len(threat.Interactions),
		"behaviors", len(threat.Behaviors),
		"degraded_pairs", pairStats.degraded,
		"quality", threat.Metrics.Quality,
		"total_time", totalTime)
	return threat, nil
}

// instantiate creates every requested component or fails the composition
// identifying the request that could not be satisfied.
func (e *Engine) instantiate(requests []ComponentRequest) ([]*types.ThreatComponent, []types.Warning, error) {
	components := make([]*types.ThreatComponent, 0, len(requests))
	var warnings []types.Warning
	for i, cr := range requests {
		comp, warns, err := e.registry.Instantiate(cr.Type, cr.Overrides)
		if err != nil {
			return nil, nil, errors.Wrap(err, "Engine", "Compose",
				fmt.Sprintf("instantiating request %d (%s)", i, cr.Type))
		}
		components = append(components, comp)
		warnings = append(warnings, warns...)
	}
	return components, warnings, nil
}

// pairStats is the per-composition pairwise accounting.
type pairStats struct {
	hits     int
	misses   int
	degraded int
}

func (s pairStats) hitRatio() float64 {
	if total := s.hits + s.misses; total > 0 {
		return float64(s.hits) / float64(total)
	}
	return 0
}

// calculatePairs computes the complete C(n,2) interaction matrix in index
// order. Invalid-state failures degrade to neutral results; any other
// failure aborts.
func (e *Engine) calculatePairs(
	components []*types.ThreatComponent,
	ictx calculator.Context,
	budget governor.Budget,
) ([]types.InteractionResult, pairStats, error) {
	n := len(components)
	interactions := make([]types.InteractionResult, 0, n*(n-1)/2)
	var stats pairStats

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			result, cached, err := e.calculator.Calculate(components[i], components[j], ictx, budget)
			switch {
			case err == nil:
				if cached {
					stats.hits++
				} else {
					stats.misses++
				}
			case errors.IsInvalid(err):
				result = types.NeutralResult(components[i], components[j])
				stats.degraded++
				e.logger.Debug("pair degraded to neutral",
					"type_a", components[i].Type,
					"type_b", components[j].Type,
					"error", err)
			default:
				return nil, pairStats{}, errors.Wrap(err, "Engine", "Compose",
					fmt.Sprintf("calculating %s/%s", components[i].Type, components[j].Type))
			}
			interactions = append(interactions, result)
		}
	}
	return interactions, stats, nil
}
