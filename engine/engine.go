// Package engine defines the boundary to the external resolver engine and
// artifact fetcher. The orchestrator only supplies parameters and consumes
// results; conflict solving, caching, checksum verification and network
// transport all live behind these interfaces.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/lockstep-build/lockstep/descriptor"
	"github.com/lockstep-build/lockstep/repository"
)

// CachePolicy controls how the engine treats cached metadata and artifacts.
// Defaults are supplied explicitly at client construction, never read from
// ambient process state, so resolution requests stay reproducible.
type CachePolicy struct {
	// Location is the root of the engine's on-disk cache.
	Location string
	// MetadataTTL bounds how long cached metadata may be reused.
	MetadataTTL time.Duration
	// Checksums is the ordered set of checksum algorithms the engine
	// verifies artifacts against.
	Checksums []digest.Algorithm
}

// Request is one unit of resolution work: a single configuration set.
type Request struct {
	// ConfigSetKey identifies the configuration set; derived from the
	// closure content, stable across runs.
	ConfigSetKey string
	// Configurations is the full scope of the set, sorted.
	Configurations []string
	// Dependencies are the entries visible to this set, exclusions merged.
	Dependencies []descriptor.Dependency
	// Fallback dependencies are consulted by the engine when a declared
	// entry carries no usable version.
	Fallback []descriptor.Dependency
	// Repositories in consultation order, see repository.Assemble.
	Repositories []repository.Spec
	Platform     descriptor.Platform
	// IterationCap bounds the engine's conflict resolution rounds.
	IterationCap int
	CachePolicy  CachePolicy
}

// ResolvedModule is one module of a resolved graph together with the
// artifacts it contributes.
type ResolvedModule struct {
	Coordinate descriptor.Coordinate
	Version    string
	Artifacts  []Artifact
}

// Artifact is a downloadable file associated with a resolved module.
type Artifact struct {
	ID         ArtifactID
	Name       string
	Classifier string
	Extension  string
}

// ArtifactID uniquely identifies an artifact across all resolved graphs.
type ArtifactID string

// NewArtifactID derives the identity of an artifact from its module and
// classifier.
func NewArtifactID(c descriptor.Coordinate, version, classifier string) ArtifactID {
	if classifier == "" {
		return ArtifactID(fmt.Sprintf("%s:%s:%s", c.Organization, c.Name, version))
	}
	return ArtifactID(fmt.Sprintf("%s:%s:%s:%s", c.Organization, c.Name, version, classifier))
}

// ResolvedGraph is the opaque per-configuration-set result of the engine.
// Graphs are never merged; the report keeps one entry per set.
type ResolvedGraph struct {
	ConfigSetKey string
	Modules      []ResolvedModule
}

// Resolver is the external resolver engine, invoked once per configuration
// set. A returned error is either a *MetadataFailure (recoverable, see
// package resolution) or a terminal engine failure.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (*ResolvedGraph, error)
}

// FetchRequest asks the fetcher for the artifacts of the given graphs.
type FetchRequest struct {
	Graphs []*ResolvedGraph
	// Classifiers selects additional artifact classifiers; nil means the
	// default classifier only.
	Classifiers []string
	CachePolicy CachePolicy
	Parallelism int
}

// ArtifactResult is the outcome for a single artifact: a local file or a
// file-level error. Errors here are data, never a pipeline failure.
type ArtifactResult struct {
	Path   string
	Digest digest.Digest
	Err    error
}

// ArtifactMap is the fetch outcome across all requested graphs.
type ArtifactMap map[ArtifactID]ArtifactResult

// Fetcher is the external artifact fetcher. The returned error is reserved
// for catastrophic conditions (e.g. context cancellation); per-artifact
// failures are reported inside the map.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (ArtifactMap, error)
}
