package resolution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	slogcontext "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"github.com/lockstep-build/lockstep/descriptor"
	"github.com/lockstep-build/lockstep/engine"
	"github.com/lockstep-build/lockstep/internal/metrics"
)

// phase names the pipeline state, used for logging and metrics only. The
// pipeline itself is a strict sequence with no retries; each stage runs at
// most once.
type phase string

const (
	phaseResolving  phase = "resolving"
	phaseFetching   phase = "fetching"
	phaseAssembling phase = "assembling"
)

// Client drives the resolution pipeline against an external resolver engine
// and artifact fetcher. A Client is safe for concurrent use; each Resolve
// call is independent.
type Client struct {
	resolver engine.Resolver
	fetcher  engine.Fetcher
	defaults Defaults
}

// NewClient creates a pipeline client. The defaults are the explicit
// process-default bundle; they are consulted wherever the per-call update
// configuration leaves a knob unset.
func NewClient(resolver engine.Resolver, fetcher engine.Fetcher, defaults Defaults) *Client {
	return &Client{
		resolver: resolver,
		fetcher:  fetcher,
		defaults: defaults,
	}
}

// Resolve runs the three pipeline stages for one module descriptor:
// version resolution per configuration set, artifact acquisition across all
// resolved graphs, and report assembly.
//
// The outcome is either a report or an error. A recoverable resolution
// failure is returned as a *Warning (match with errors.As); it carries the
// identity of every module whose metadata could not be resolved. Any other
// error is terminal. Per-artifact fetch errors never fail the call; they
// are embedded in the report.
func (c *Client) Resolve(ctx context.Context, desc descriptor.Descriptor, cfg UpdateConfiguration, warningCfg WarningConfiguration) (*UpdateReport, error) {
	runID := uuid.NewString()
	logger := slogcontext.FromCtx(ctx).With(
		slog.String("realm", "resolution"),
		slog.String("run", runID),
	)

	req, err := Normalize(desc, cfg, c.defaults)
	if err != nil {
		metrics.RecordOutcome(metrics.OutcomeFailure)
		return nil, fmt.Errorf("normalizing resolution request for %s failed: %w", desc.Module(), err)
	}
	graph, err := BuildConfigGraph(req.Configurations, req.Dependencies)
	if err != nil {
		metrics.RecordOutcome(metrics.OutcomeFailure)
		return nil, fmt.Errorf("building configuration graph for %s failed: %w", req.Module, err)
	}
	logger.DebugContext(ctx, "resolution request normalized",
		"module", req.Module.String(),
		"configSets", len(graph.Sets),
		"repositories", len(req.Repositories),
	)

	resolved, err := c.resolveStage(ctx, logger, req, graph)
	if err != nil {
		err = translateResolveError(err, warningCfg)
		if IsWarning(err) {
			metrics.RecordOutcome(metrics.OutcomeWarning)
			logger.WarnContext(ctx, "resolution ended with a warning", "module", req.Module.String(), "error", err)
		} else {
			metrics.RecordOutcome(metrics.OutcomeFailure)
			logger.ErrorContext(ctx, "resolution pipeline failed", "module", req.Module.String(), "phase", string(phaseResolving), "error", err)
		}
		return nil, err
	}

	artifacts, err := c.fetchStage(ctx, logger, req, resolved)
	if err != nil {
		metrics.RecordOutcome(metrics.OutcomeFailure)
		logger.ErrorContext(ctx, "resolution pipeline failed", "module", req.Module.String(), "phase", string(phaseFetching), "error", err)
		return nil, fmt.Errorf("fetching artifacts for %s failed: %w", req.Module, err)
	}

	report := c.assembleStage(ctx, logger, runID, req, graph, resolved, artifacts)

	metrics.RecordOutcome(metrics.OutcomeSuccess)
	logger.InfoContext(ctx, "resolution pipeline done",
		"module", req.Module.String(),
		"configurations", len(report.Configurations),
		"artifactErrors", report.ArtifactErrors(),
	)
	return report, nil
}

// resolveStage invokes the engine once per configuration set, bounded by the
// parallelism tunable. The first failure cancels outstanding resolutions and
// aborts the pipeline before any artifact is fetched.
func (c *Client) resolveStage(ctx context.Context, logger *slog.Logger, req *Request, graph *ConfigGraph) ([]*engine.ResolvedGraph, error) {
	start := time.Now()
	logger.DebugContext(ctx, "resolving configuration sets", "phase", string(phaseResolving))

	results := make([]*engine.ResolvedGraph, len(graph.Sets))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(req.Tunables.Parallelism)
	for i, set := range graph.Sets {
		eg.Go(func() error {
			resolved, err := c.resolver.Resolve(egCtx, c.engineRequest(req, graph, set))
			if err != nil {
				return fmt.Errorf("resolving configuration set %q failed: %w", set.Key, err)
			}
			results[i] = resolved
			return nil
		})
	}
	// Join barrier: every configuration set completes before fetching starts.
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	metrics.AddConfigSetsResolved(len(graph.Sets))
	metrics.ObserveStage(string(phaseResolving), time.Since(start))
	return results, nil
}

// engineRequest builds the per-configuration-set engine input. Dependencies
// visible to any member of the set collapse into one list; duplicate
// declarations of the same coordinate and constraint union their exclusion
// sets so no exclusion pair is lost.
func (c *Client) engineRequest(req *Request, graph *ConfigGraph, set ConfigSet) engine.Request {
	index := make(map[string]int)
	var deps []descriptor.Dependency
	for _, member := range set.Members {
		for _, dep := range graph.Dependencies[member] {
			key := dep.Coordinate.String() + "@" + dep.Constraint
			if i, ok := index[key]; ok {
				deps[i].Exclusions = mergeExclusions(deps[i].Exclusions, dep.Exclusions)
				continue
			}
			index[key] = len(deps)
			deps = append(deps, dep)
		}
	}
	return engine.Request{
		ConfigSetKey:   set.Key,
		Configurations: set.Scope,
		Dependencies:   deps,
		Fallback:       req.Fallback,
		Repositories:   req.Repositories,
		Platform:       req.Platform,
		IterationCap:   req.Tunables.IterationCap,
		CachePolicy:    req.CachePolicy,
	}
}

// fetchStage acquires the artifacts of all resolved graphs in one fetcher
// call. Per-artifact failures live inside the returned map; only
// catastrophic fetcher errors propagate.
func (c *Client) fetchStage(ctx context.Context, logger *slog.Logger, req *Request, resolved []*engine.ResolvedGraph) (engine.ArtifactMap, error) {
	start := time.Now()
	logger.DebugContext(ctx, "fetching artifacts", "phase", string(phaseFetching), "graphs", len(resolved))

	artifacts, err := c.fetcher.Fetch(ctx, engine.FetchRequest{
		Graphs:      resolved,
		Classifiers: req.Classifiers,
		CachePolicy: req.CachePolicy,
		Parallelism: req.Tunables.Parallelism,
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveStage(string(phaseFetching), time.Since(start))
	return artifacts, nil
}

func (c *Client) assembleStage(ctx context.Context, logger *slog.Logger, runID string, req *Request, graph *ConfigGraph, resolved []*engine.ResolvedGraph, artifacts engine.ArtifactMap) *UpdateReport {
	start := time.Now()
	logger.DebugContext(ctx, "assembling update report", "phase", string(phaseAssembling))

	report := assembleReport(runID, req, graph, resolved, artifacts)

	metrics.AddArtifactErrors(report.ArtifactErrors())
	metrics.ObserveStage(string(phaseAssembling), time.Since(start))
	return report
}
