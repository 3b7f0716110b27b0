package resolution

import (
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/lockstep-build/lockstep/descriptor"
	"github.com/lockstep-build/lockstep/engine"
)

// UpdateReport is the final pipeline output: the resolved modules and their
// artifacts, grouped per configuration. The caller owns the report after
// return; the pipeline keeps no reference.
type UpdateReport struct {
	RunID          string                `json:"runId"`
	Module         descriptor.Coordinate `json:"module"`
	Version        string                `json:"version"`
	Platform       descriptor.Platform   `json:"platform"`
	Configurations []ConfigurationReport `json:"configurations"`
}

// ConfigurationReport lists the modules resolved for one configuration.
// Configurations of the same configuration set share one resolved graph, so
// their module lists are identical by construction.
type ConfigurationReport struct {
	Configuration string         `json:"configuration"`
	ConfigSetKey  string         `json:"configSet"`
	Modules       []ModuleReport `json:"modules"`
}

// ModuleReport is one resolved module with its artifacts.
type ModuleReport struct {
	Coordinate descriptor.Coordinate `json:"coordinate"`
	Version    string                `json:"version"`
	Artifacts  []ArtifactReport      `json:"artifacts"`
}

// ArtifactReport is the per-artifact outcome: a local file or an inline,
// non-fatal error.
type ArtifactReport struct {
	ID         engine.ArtifactID `json:"id"`
	Classifier string            `json:"classifier,omitempty"`
	Path       string            `json:"path,omitempty"`
	Digest     digest.Digest     `json:"digest,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// ArtifactErrors counts the artifacts that carry an inline error.
func (r *UpdateReport) ArtifactErrors() int {
	n := 0
	for _, c := range r.Configurations {
		for _, m := range c.Modules {
			for _, a := range m.Artifacts {
				if a.Error != "" {
					n++
				}
			}
		}
	}
	return n
}

// Configuration returns the report entry for the named configuration.
func (r *UpdateReport) Configuration(name string) (ConfigurationReport, bool) {
	for _, c := range r.Configurations {
		if c.Configuration == name {
			return c, true
		}
	}
	return ConfigurationReport{}, false
}

// assembleReport builds the update report from the resolved graphs and the
// artifact map, preserving per-configuration grouping. Platform-library
// artifacts are substituted from the override bundle when present.
func assembleReport(runID string, req *Request, graph *ConfigGraph, resolved []*engine.ResolvedGraph, artifacts engine.ArtifactMap) *UpdateReport {
	graphBySet := make(map[string]*engine.ResolvedGraph, len(resolved))
	for _, g := range resolved {
		graphBySet[g.ConfigSetKey] = g
	}

	report := &UpdateReport{
		RunID:    runID,
		Module:   req.Module,
		Version:  req.Version,
		Platform: req.Platform,
	}

	for _, set := range graph.Sets {
		resolvedGraph := graphBySet[set.Key]
		for _, member := range set.Members {
			entry := ConfigurationReport{
				Configuration: member,
				ConfigSetKey:  set.Key,
			}
			if resolvedGraph != nil {
				entry.Modules = moduleReports(req, resolvedGraph, artifacts)
			}
			report.Configurations = append(report.Configurations, entry)
		}
	}

	slices.SortFunc(report.Configurations, func(a, b ConfigurationReport) int {
		return strings.Compare(a.Configuration, b.Configuration)
	})
	return report
}

func moduleReports(req *Request, resolvedGraph *engine.ResolvedGraph, artifacts engine.ArtifactMap) []ModuleReport {
	modules := make([]ModuleReport, 0, len(resolvedGraph.Modules))
	for _, module := range resolvedGraph.Modules {
		entry := ModuleReport{
			Coordinate: module.Coordinate,
			Version:    module.Version,
			Artifacts:  make([]ArtifactReport, 0, len(module.Artifacts)),
		}
		for _, artifact := range module.Artifacts {
			entry.Artifacts = append(entry.Artifacts, artifactReport(req, module, artifact, artifacts))
		}
		modules = append(modules, entry)
	}
	return modules
}

func artifactReport(req *Request, module engine.ResolvedModule, artifact engine.Artifact, artifacts engine.ArtifactMap) ArtifactReport {
	entry := ArtifactReport{
		ID:         artifact.ID,
		Classifier: artifact.Classifier,
	}

	// The platform override bundle substitutes local toolchain files for
	// artifacts of the platform library itself.
	if req.Override != nil && module.Coordinate.Organization == req.Platform.Organization {
		if path, ok := req.Override.Files[module.Coordinate.Name]; ok {
			entry.Path = path
			return entry
		}
	}

	result, ok := artifacts[artifact.ID]
	if !ok {
		entry.Error = "artifact was not fetched"
		return entry
	}
	if result.Err != nil {
		entry.Error = result.Err.Error()
		return entry
	}
	entry.Path = result.Path
	entry.Digest = result.Digest
	return entry
}
