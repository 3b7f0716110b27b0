// Package enginetest provides in-memory resolver and fetcher fakes for
// tests. Both count their invocations so tests can assert stage ordering
// and short-circuit behavior.
package enginetest

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/lockstep-build/lockstep/engine"
	"github.com/lockstep-build/lockstep/repository"
)

// Resolver is a fake engine.Resolver. If Respond is set it is called for
// every request; otherwise a graph is synthesized from the request itself,
// resolving every dependency at its constraint verbatim. Inter-project
// coordinates resolve to the project version regardless of constraint,
// mirroring the precedence contract real engines must honor.
type Resolver struct {
	Respond func(req engine.Request) (*engine.ResolvedGraph, error)

	mu    sync.Mutex
	calls []engine.Request
}

func (r *Resolver) Resolve(ctx context.Context, req engine.Request) (*engine.ResolvedGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.calls = append(r.calls, req)
	r.mu.Unlock()

	if r.Respond != nil {
		return r.Respond(req)
	}
	return synthesize(req), nil
}

// Calls returns a copy of all requests seen so far.
func (r *Resolver) Calls() []engine.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]engine.Request, len(r.calls))
	copy(calls, r.calls)
	return calls
}

func synthesize(req engine.Request) *engine.ResolvedGraph {
	projects := make(map[string]string)
	for _, spec := range req.Repositories {
		if spec.Kind != repository.KindInterProject {
			continue
		}
		for _, p := range spec.Projects {
			projects[p.Coordinate.String()] = p.Version
		}
	}

	graph := &engine.ResolvedGraph{ConfigSetKey: req.ConfigSetKey}
	for _, dep := range req.Dependencies {
		version := dep.Constraint
		if v, ok := projects[dep.Coordinate.String()]; ok {
			version = v
		}
		graph.Modules = append(graph.Modules, engine.ResolvedModule{
			Coordinate: dep.Coordinate,
			Version:    version,
			Artifacts: []engine.Artifact{{
				ID:        engine.NewArtifactID(dep.Coordinate, version, ""),
				Name:      dep.Coordinate.Name,
				Extension: "jar",
			}},
		})
	}
	return graph
}

// Fetcher is a fake engine.Fetcher. Fail lists artifact ids that report a
// file-level error; everything else succeeds with a deterministic path under
// Root and a digest over the artifact id.
type Fetcher struct {
	Root string
	Fail map[engine.ArtifactID]error

	mu    sync.Mutex
	calls []engine.FetchRequest
}

func (f *Fetcher) Fetch(ctx context.Context, req engine.FetchRequest) (engine.ArtifactMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	out := make(engine.ArtifactMap)
	for _, graph := range req.Graphs {
		for _, module := range graph.Modules {
			for _, artifact := range module.Artifacts {
				if err, ok := f.Fail[artifact.ID]; ok {
					out[artifact.ID] = engine.ArtifactResult{Err: err}
					continue
				}
				out[artifact.ID] = engine.ArtifactResult{
					Path:   path.Join(f.Root, fmt.Sprintf("%s.%s", artifact.Name, artifact.Extension)),
					Digest: digest.FromString(string(artifact.ID)),
				}
			}
		}
	}
	return out, nil
}

// Calls returns a copy of all fetch requests seen so far.
func (f *Fetcher) Calls() []engine.FetchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]engine.FetchRequest, len(f.calls))
	copy(calls, f.calls)
	return calls
}
