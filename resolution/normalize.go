package resolution

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/lockstep-build/lockstep/descriptor"
	"github.com/lockstep-build/lockstep/engine"
	"github.com/lockstep-build/lockstep/repository"
)

// Normalize derives the canonical resolution request from a module
// descriptor, the caller's update configuration and the client defaults.
//
// The descriptor variant set is closed; an unrecognized implementation is a
// programming-contract violation and panics.
func Normalize(desc descriptor.Descriptor, cfg UpdateConfiguration, defaults Defaults) (*Request, error) {
	var (
		version      string
		declared     *descriptor.Platform
		configs      []descriptor.Configuration
		dependencies []descriptor.Dependency
	)
	switch d := desc.(type) {
	case *descriptor.Native:
		version = d.Version
		declared = d.Platform
		configs = d.Configurations
		dependencies = d.Dependencies
	case *descriptor.Foreign:
		version = d.Version
		declared = d.Platform
		configs = d.Configurations
		dependencies = d.Dependencies
	default:
		panic(fmt.Sprintf("resolution: unrecognized module descriptor type %T", desc))
	}

	platform, err := effectivePlatform(declared, cfg, defaults)
	if err != nil {
		return nil, err
	}

	deps := make([]descriptor.Dependency, 0, len(dependencies))
	for _, dep := range dependencies {
		if _, err := semver.NewConstraint(dep.Constraint); err != nil {
			return nil, fmt.Errorf("dependency %s has invalid version constraint %q: %w", dep.Coordinate, dep.Constraint, err)
		}
		dep = dep.Clone()
		dep.Exclusions = mergeExclusions(dep.Exclusions, cfg.Exclusions)
		deps = append(deps, dep)
	}

	declaredRepos := cfg.Repositories
	if cfg.SortRepositories {
		declaredRepos = reorderRepositories(declaredRepos)
	}

	tunables := effectiveTunables(cfg.Tunables, defaults.Tunables)

	return &Request{
		Module:         desc.Module().Clone(),
		Version:        version,
		Dependencies:   deps,
		Configurations: slices.Clone(configs),
		Platform:       platform,
		Classifiers:    slices.Clone(cfg.Classifiers),
		Repositories:   repository.Assemble(declaredRepos, cfg.Credentials, cfg.Projects),
		Fallback:       slices.Clone(cfg.FallbackDependencies),
		Override:       cfg.Override,
		Tunables:       tunables,
		CachePolicy:    effectiveCachePolicy(cfg.CachePolicy, tunables, defaults),
	}, nil
}

// effectivePlatform applies the fallback chains for the platform triple:
// organization and version each prefer the explicit override, then the
// descriptor's declared info, then the defaults; the binary-compatible
// version comes from declared info or is derived from the full version.
func effectivePlatform(declared *descriptor.Platform, cfg UpdateConfiguration, defaults Defaults) (descriptor.Platform, error) {
	var p descriptor.Platform
	if declared != nil {
		p = *declared
	}

	if cfg.PlatformOrganization != "" {
		p.Organization = cfg.PlatformOrganization
	}
	if p.Organization == "" {
		p.Organization = defaults.PlatformOrganization
	}
	if p.Organization == "" {
		p.Organization = DefaultPlatformOrganization
	}

	if cfg.PlatformVersion != "" {
		p.Version = cfg.PlatformVersion
	}
	if p.Version == "" {
		p.Version = defaults.ToolchainVersion
	}
	if p.Version == "" {
		return descriptor.Platform{}, fmt.Errorf("no platform version: neither override, declared module info nor toolchain version is set")
	}

	if p.BinaryVersion == "" {
		p.BinaryVersion = binaryCompatible(p.Version)
	}
	return p, nil
}

// binaryCompatible reduces a full version to its binary-compatible series by
// keeping the first two dot-separated components.
func binaryCompatible(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}

// mergeExclusions unions the dependency-local and global exclusion sets with
// set semantics and a stable order.
func mergeExclusions(local, global []descriptor.Exclusion) []descriptor.Exclusion {
	if len(local) == 0 && len(global) == 0 {
		return nil
	}
	seen := make(map[descriptor.Exclusion]struct{}, len(local)+len(global))
	merged := make([]descriptor.Exclusion, 0, len(local)+len(global))
	for _, e := range slices.Concat(local, global) {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		merged = append(merged, e)
	}
	slices.SortFunc(merged, func(a, b descriptor.Exclusion) int {
		return strings.Compare(a.String(), b.String())
	})
	return merged
}

// reorderRepositories applies the stable reorder policy: local repositories
// are grouped before remote ones, preserving relative declaration order
// within each group.
func reorderRepositories(declared []repository.Declared) []repository.Declared {
	out := slices.Clone(declared)
	slices.SortStableFunc(out, func(a, b repository.Declared) int {
		return repositoryRank(a.Kind) - repositoryRank(b.Kind)
	})
	return out
}

func repositoryRank(kind repository.Kind) int {
	if kind == repository.KindLocal {
		return 0
	}
	return 1
}

func effectiveTunables(requested, defaults Tunables) Tunables {
	out := requested
	if out.Parallelism <= 0 {
		out.Parallelism = defaults.Parallelism
	}
	if out.Parallelism <= 0 {
		out.Parallelism = 1
	}
	if out.IterationCap <= 0 {
		out.IterationCap = defaults.IterationCap
	}
	if out.MetadataTTL <= 0 {
		out.MetadataTTL = defaults.MetadataTTL
	}
	return out
}

// effectiveCachePolicy fills the unset policy fields. The TTL goes through
// the already-defaulted tunables so that a TTL configured on either side
// (per-call or default tunables) reaches the engine.
func effectiveCachePolicy(requested engine.CachePolicy, tunables Tunables, defaults Defaults) engine.CachePolicy {
	policy := requested
	if policy.Location == "" {
		policy.Location = defaults.CachePolicy.Location
	}
	if policy.MetadataTTL == 0 {
		policy.MetadataTTL = tunables.MetadataTTL
	}
	if policy.MetadataTTL == 0 {
		policy.MetadataTTL = defaults.CachePolicy.MetadataTTL
	}
	if len(policy.Checksums) == 0 {
		policy.Checksums = slices.Clone(defaults.CachePolicy.Checksums)
	}
	return policy
}
