// Package repository assembles the ordered repository list handed to the
// resolver engine: user-declared repositories with credentials attached,
// followed by the internal synthetic repositories (plugin-pattern
// repositories and the inter-project repository for sibling modules of the
// same build).
package repository

import (
	"github.com/lockstep-build/lockstep/descriptor"
)

// Kind classifies a repository for the resolver engine.
type Kind string

const (
	KindMaven Kind = "maven"
	KindIvy   Kind = "ivy"
	KindLocal Kind = "local"

	// KindPluginPattern marks a synthetic metadata-only repository used to
	// locate plugin descriptors. It never resolves artifacts.
	KindPluginPattern Kind = "plugin-pattern"
	// KindInterProject marks the synthetic repository representing the other
	// modules of the same multi-module build.
	KindInterProject Kind = "inter-project"
)

// Declared is a user-declared repository before assembly.
type Declared struct {
	ID   string
	Kind Kind
	URL  string
}

// Spec is the engine-native repository representation. The engine consults
// specs in slice order, except for inter-project coordinates which it is
// expected to consult preferentially regardless of position (a documented
// engine contract, not enforced here).
type Spec struct {
	ID   string
	Kind Kind
	URL  string

	// MetadataOnly repositories serve module descriptors but never artifacts.
	MetadataOnly bool

	// Credential is nil for anonymous repositories.
	Credential *Credential

	// Projects carries the coordinates served by an inter-project spec.
	// Empty for every other kind.
	Projects []ProjectRef
}

// identity is the deduplication key of a spec.
func (s Spec) identity() string {
	if s.ID != "" {
		return s.ID
	}
	return string(s.Kind) + "|" + s.URL
}

// ProjectRef is a sibling module of the same multi-module build.
type ProjectRef struct {
	Coordinate descriptor.Coordinate
	Version    string
}

// Credential is an authentication entry attached to a repository.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
