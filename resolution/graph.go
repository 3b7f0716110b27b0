package resolution

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/lockstep-build/lockstep/descriptor"
)

// ConfigSet is a group of configurations resolved jointly because of their
// extends relationships. Members are the declared configurations assigned to
// the set; Scope is the full closed name set (members plus everything they
// extend) handed to the engine.
type ConfigSet struct {
	// Key identifies the set, derived from the scope content alone so that
	// grouping is independent of declaration order.
	Key     string
	Members []string
	Scope   []string
}

// ConfigGraph is the expansion of the declared configurations into
// independently resolvable configuration sets plus the flattened
// per-configuration dependency list.
type ConfigGraph struct {
	// Sets is sorted by key. Every declared configuration is a member of
	// exactly one set.
	Sets []ConfigSet
	// Dependencies maps each declared configuration to the dependency
	// entries visible to it through its extends closure.
	Dependencies map[string][]descriptor.Dependency
}

// Set returns the configuration set the given configuration is a member of.
func (g *ConfigGraph) Set(configuration string) (ConfigSet, bool) {
	for _, set := range g.Sets {
		if slices.Contains(set.Members, configuration) {
			return set, true
		}
	}
	return ConfigSet{}, false
}

// BuildConfigGraph groups the declared configurations into configuration
// sets and flattens the dependency list per configuration.
//
// Grouping rules, all computed from closure content so the result is
// reproducible regardless of declaration order:
//   - the closure of a configuration is the set of configurations it
//     transitively extends, excluding itself;
//   - configurations with identical non-empty closures are resolved
//     together (e.g. compile and runtime both extending the same base);
//   - a configuration contained in another set's closure is absorbed into
//     that set instead of forming its own;
//   - configurations with empty closures never merge with each other.
func BuildConfigGraph(configs []descriptor.Configuration, deps []descriptor.Dependency) (*ConfigGraph, error) {
	extends := make(map[string][]string, len(configs))
	declared := make([]string, 0, len(configs))
	for _, c := range configs {
		if _, ok := extends[c.Name]; ok {
			return nil, fmt.Errorf("configuration %q is declared twice", c.Name)
		}
		extends[c.Name] = c.Extends
		declared = append(declared, c.Name)
	}
	for _, c := range configs {
		for _, parent := range c.Extends {
			if _, ok := extends[parent]; !ok {
				return nil, fmt.Errorf("configuration %q extends undeclared configuration %q", c.Name, parent)
			}
		}
	}

	closures := make(map[string]map[string]struct{}, len(declared))
	for _, name := range declared {
		closure := make(map[string]struct{})
		if err := expandClosure(name, name, extends, closure, nil); err != nil {
			return nil, err
		}
		closures[name] = closure
	}

	// Group configurations by closure content. Empty closures get a unique
	// group per configuration.
	groups := make(map[string][]string)
	for _, name := range declared {
		key := closureKey(closures[name])
		if key == "" {
			key = "\x00" + name
		}
		groups[key] = append(groups[key], name)
	}

	sets := make([]ConfigSet, 0, len(groups))
	for _, members := range groups {
		slices.Sort(members)
		scope := make(map[string]struct{})
		for _, m := range members {
			scope[m] = struct{}{}
			maps.Copy(scope, closures[m])
		}
		sets = append(sets, ConfigSet{
			Members: members,
			Scope:   slices.Sorted(maps.Keys(scope)),
		})
	}
	for i := range sets {
		sets[i].Key = strings.Join(sets[i].Scope, "+")
	}
	slices.SortFunc(sets, func(a, b ConfigSet) int {
		return strings.Compare(a.Key, b.Key)
	})

	// Absorb sets whose members are entirely covered by another set's
	// scope. First matching set in key order wins, keeping the grouping
	// deterministic.
	absorbed := make([]bool, len(sets))
	for i, set := range sets {
		for j, into := range sets {
			if i == j || absorbed[j] {
				continue
			}
			if coveredBy(set.Members, into.Scope) {
				into.Members = slices.Sorted(slices.Values(slices.Concat(into.Members, set.Members)))
				sets[j] = into
				absorbed[i] = true
				break
			}
		}
	}
	merged := make([]ConfigSet, 0, len(sets))
	for i, set := range sets {
		if !absorbed[i] {
			merged = append(merged, set)
		}
	}

	return &ConfigGraph{
		Sets:         merged,
		Dependencies: flattenDependencies(declared, closures, deps),
	}, nil
}

func expandClosure(root, name string, extends map[string][]string, closure map[string]struct{}, trail []string) error {
	if slices.Contains(trail, name) {
		return fmt.Errorf("configuration %q has a cyclic extends chain via %q", root, name)
	}
	trail = append(trail, name)
	for _, parent := range extends[name] {
		if parent == root {
			return fmt.Errorf("configuration %q has a cyclic extends chain via %q", root, name)
		}
		if _, ok := closure[parent]; ok {
			continue
		}
		closure[parent] = struct{}{}
		if err := expandClosure(root, parent, extends, closure, trail); err != nil {
			return err
		}
	}
	return nil
}

func closureKey(closure map[string]struct{}) string {
	return strings.Join(slices.Sorted(maps.Keys(closure)), "+")
}

func coveredBy(members []string, scope []string) bool {
	for _, m := range members {
		if !slices.Contains(scope, m) {
			return false
		}
	}
	return true
}

// flattenDependencies computes the per-configuration dependency list: an
// entry scoped to configuration C is visible to every configuration whose
// closure (including itself) contains C. Entries without an explicit scope
// default to every configuration.
func flattenDependencies(declared []string, closures map[string]map[string]struct{}, deps []descriptor.Dependency) map[string][]descriptor.Dependency {
	out := make(map[string][]descriptor.Dependency, len(declared))
	for _, name := range declared {
		visible := make([]descriptor.Dependency, 0)
		for _, dep := range deps {
			if dependencyVisible(dep, name, closures[name]) {
				visible = append(visible, dep)
			}
		}
		out[name] = visible
	}
	return out
}

func dependencyVisible(dep descriptor.Dependency, name string, closure map[string]struct{}) bool {
	if len(dep.Configurations) == 0 {
		return true
	}
	for _, scope := range dep.Configurations {
		if scope == name {
			return true
		}
		if _, ok := closure[scope]; ok {
			return true
		}
	}
	return false
}
