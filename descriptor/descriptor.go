// Package descriptor holds the module descriptor model: the declared
// coordinates, configurations and dependencies of a module before
// normalization. Descriptors come in exactly two shapes, a native one built
// from Settings and a foreign one wrapping a pre-built representation from
// another build tool. The variant set is closed; consumers switch
// exhaustively and treat anything else as a programming error.
package descriptor

import (
	"slices"
)

// Descriptor is the closed variant over module descriptor shapes.
// Only *Native and *Foreign implement it.
type Descriptor interface {
	// Module returns the coordinate of the described module itself.
	Module() Coordinate

	sealed()
}

// Settings is the raw caller input from which a native descriptor is built.
type Settings struct {
	Module         Coordinate
	Version        string
	Platform       *Platform // declared platform info, fields may be empty
	Configurations []Configuration
	Dependencies   []Dependency
}

// Native is a descriptor declared directly against this library.
type Native struct {
	ModuleCoordinate Coordinate
	Version          string
	Platform         *Platform
	Configurations   []Configuration
	Dependencies     []Dependency
}

func (d *Native) Module() Coordinate { return d.ModuleCoordinate }
func (d *Native) sealed()            {}

// Foreign wraps a descriptor produced by another build tool. The handle is
// opaque to this library and only passed through to the resolver engine;
// the extracted configurations and dependencies drive normalization.
type Foreign struct {
	Handle           any
	ModuleCoordinate Coordinate
	Version          string
	Platform         *Platform
	Configurations   []Configuration
	Dependencies     []Dependency
}

func (d *Foreign) Module() Coordinate { return d.ModuleCoordinate }
func (d *Foreign) sealed()            {}

// Describe builds the native descriptor for the given settings. The settings
// are copied; later mutation of the input does not affect the descriptor.
func Describe(s Settings) Descriptor {
	deps := make([]Dependency, 0, len(s.Dependencies))
	for _, d := range s.Dependencies {
		deps = append(deps, d.Clone())
	}
	configs := make([]Configuration, 0, len(s.Configurations))
	for _, c := range s.Configurations {
		c.Extends = slices.Clone(c.Extends)
		configs = append(configs, c)
	}
	var platform *Platform
	if s.Platform != nil {
		p := *s.Platform
		platform = &p
	}
	return &Native{
		ModuleCoordinate: s.Module.Clone(),
		Version:          s.Version,
		Platform:         platform,
		Configurations:   configs,
		Dependencies:     deps,
	}
}
