// Package resolution is the pipeline orchestrator. It normalizes a module
// descriptor and update configuration into a canonical resolution request,
// expands the configuration graph, and drives the three pipeline stages —
// version resolution, artifact acquisition, report assembly — against the
// external engine.
package resolution

import (
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/lockstep-build/lockstep/descriptor"
	"github.com/lockstep-build/lockstep/engine"
	"github.com/lockstep-build/lockstep/repository"
)

// DefaultPlatformOrganization is used when neither the update configuration
// nor the descriptor declares a platform organization.
const DefaultPlatformOrganization = "build.lockstep.platform"

// Tunables are the performance and safety knobs of a resolution run. They
// never affect the result, only how it is computed.
type Tunables struct {
	// Parallelism bounds concurrent configuration-set resolutions and is
	// handed to the fetcher for artifact downloads.
	Parallelism int
	// IterationCap bounds the engine's conflict resolution rounds.
	IterationCap int
	// MetadataTTL bounds reuse of cached metadata.
	MetadataTTL time.Duration
}

// Defaults is the explicit process-default bundle passed to NewClient.
// Nothing in this package reads ambient global state.
type Defaults struct {
	PlatformOrganization string
	// ToolchainVersion is the running toolchain's platform version, the last
	// fallback for the effective platform version.
	ToolchainVersion string
	CachePolicy      engine.CachePolicy
	Tunables         Tunables
}

// NewDefaults returns the stock defaults: the default platform organization,
// SHA-256 checksums and moderate parallelism. ToolchainVersion must be set
// by the embedding tool.
func NewDefaults() Defaults {
	return Defaults{
		PlatformOrganization: DefaultPlatformOrganization,
		CachePolicy: engine.CachePolicy{
			MetadataTTL: 24 * time.Hour,
			Checksums:   []digest.Algorithm{digest.SHA256},
		},
		Tunables: Tunables{
			Parallelism:  4,
			IterationCap: 25,
		},
	}
}

// PlatformOverride substitutes local toolchain files for artifacts of the
// platform library itself, keyed by module name.
type PlatformOverride struct {
	Files map[string]string
}

// UpdateConfiguration is the caller-supplied raw input of one resolution
// call, alongside the module descriptor.
type UpdateConfiguration struct {
	// PlatformOrganization overrides the descriptor's platform organization.
	PlatformOrganization string
	// PlatformVersion overrides the descriptor's platform version.
	PlatformVersion string

	// Exclusions apply globally to every dependency of the request.
	Exclusions []descriptor.Exclusion

	// Classifiers enables classifier selection. Nil means the default
	// classifier only.
	Classifiers []string

	// Repositories are the user-declared repositories in declaration order.
	Repositories []repository.Declared
	// Credentials are merged into the assembled repository list.
	Credentials *repository.CredentialStore
	// Projects are the sibling modules of the same multi-module build,
	// exposed to the engine through the inter-project repository.
	Projects []repository.ProjectRef
	// SortRepositories applies the stable reorder policy grouping local
	// repositories before remote ones.
	SortRepositories bool

	// FallbackDependencies are consulted by the engine for declared entries
	// without a usable version.
	FallbackDependencies []descriptor.Dependency

	// Override substitutes local files for platform-library artifacts
	// during report assembly.
	Override *PlatformOverride

	// Tunables and CachePolicy override the client defaults where non-zero.
	Tunables    Tunables
	CachePolicy engine.CachePolicy
}

// WarningConfiguration controls how an unresolved warning is presented to
// the caller. It travels unchanged into the Warning.
type WarningConfiguration struct {
	// ShowDetails includes the underlying per-module errors in the warning
	// message.
	ShowDetails bool
}

// Request is the canonical, normalized resolution request. It is built once
// per resolution call by Normalize and immutable afterwards.
type Request struct {
	Module  descriptor.Coordinate
	Version string

	// Dependencies carry their merged exclusion sets.
	Dependencies   []descriptor.Dependency
	Configurations []descriptor.Configuration

	Platform    descriptor.Platform
	Classifiers []string

	// Repositories is the assembled, ordered repository list.
	Repositories []repository.Spec

	Fallback []descriptor.Dependency
	Override *PlatformOverride

	Tunables    Tunables
	CachePolicy engine.CachePolicy
}
