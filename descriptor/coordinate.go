package descriptor

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Coordinate identifies a dependency target by organization and name,
// independent of any concrete version. Extra attributes further qualify the
// target (e.g. a platform suffix) and take part in identity.
type Coordinate struct {
	Organization string            `json:"organization"`
	Name         string            `json:"name"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

func (c Coordinate) String() string {
	if len(c.Attributes) == 0 {
		return fmt.Sprintf("%s:%s", c.Organization, c.Name)
	}
	attrs := make([]string, 0, len(c.Attributes))
	for _, key := range slices.Sorted(maps.Keys(c.Attributes)) {
		attrs = append(attrs, key+"="+c.Attributes[key])
	}
	return fmt.Sprintf("%s:%s;%s", c.Organization, c.Name, strings.Join(attrs, ","))
}

// Equal compares organization, name and all extra attributes.
func (c Coordinate) Equal(o Coordinate) bool {
	return c.Organization == o.Organization && c.Name == o.Name && maps.Equal(c.Attributes, o.Attributes)
}

// Clone creates a deep copy of the coordinate.
func (c Coordinate) Clone() Coordinate {
	c.Attributes = maps.Clone(c.Attributes)
	return c
}

// Exclusion names a module that must never enter the resolved graph, applied
// either to a single dependency or globally to the whole request.
type Exclusion struct {
	Organization string `json:"organization"`
	Name         string `json:"name"`
}

func (e Exclusion) String() string {
	return e.Organization + ":" + e.Name
}

// Dependency is one declared dependency entry: a coordinate, a version
// constraint and the configuration scopes it applies to.
type Dependency struct {
	Coordinate     Coordinate  `json:"coordinate"`
	Constraint     string      `json:"constraint"`
	Configurations []string    `json:"configurations,omitempty"`
	Exclusions     []Exclusion `json:"exclusions,omitempty"`
	Transitive     bool        `json:"transitive"`
}

// Clone creates a deep copy of the dependency.
func (d Dependency) Clone() Dependency {
	d.Coordinate = d.Coordinate.Clone()
	d.Configurations = slices.Clone(d.Configurations)
	d.Exclusions = slices.Clone(d.Exclusions)
	return d
}

// Configuration is a named dependency scope that may extend other scopes.
type Configuration struct {
	Name    string   `json:"name"`
	Extends []string `json:"extends,omitempty"`
}

// Platform is the effective platform/library version triple a module is
// built against. BinaryVersion is the binary-compatible version series,
// typically the first two dot-separated components of Version.
type Platform struct {
	Organization  string `json:"organization"`
	Version       string `json:"version"`
	BinaryVersion string `json:"binaryVersion"`
}
