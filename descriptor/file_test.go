package descriptor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lockstep-build/lockstep/descriptor"
)

const projectYAML = `
module:
  organization: acme
  name: app
  version: 1.2.3
platform:
  organization: platform.org
  version: 3.4.1
configurations:
  - name: compile
  - name: runtime
    extends: [compile]
dependencies:
  - organization: acme
    name: core
    version: 1.0.0
    configurations: [compile]
    exclusions:
      - organization: bad
        name: lib
  - organization: acme
    name: server
    version: 2.0.0
    configurations: [runtime]
    intransitive: true
repositories:
  - id: central
    kind: maven
    url: https://repo.example.com/releases
  - id: local
    kind: local
`

func TestParseFile(t *testing.T) {
	r := require.New(t)
	file, err := descriptor.ParseFile([]byte(projectYAML))
	r.NoError(err)

	r.Equal("acme", file.Module.Organization)
	r.Equal("app", file.Module.Name)
	r.Equal("1.2.3", file.Module.Version)
	r.Len(file.Configurations, 2)
	r.Len(file.Dependencies, 2)
	r.Len(file.Repositories, 2)

	settings := file.Settings()
	r.Equal("acme:app", settings.Module.String())
	r.Equal("platform.org", settings.Platform.Organization)
	r.True(settings.Dependencies[0].Transitive)
	r.False(settings.Dependencies[1].Transitive)
	r.Equal([]descriptor.Exclusion{{Organization: "bad", Name: "lib"}}, settings.Dependencies[0].Exclusions)
}

func TestParseFileRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{name: "missing module", yaml: `configurations: [{name: compile}]`},
		{name: "missing version", yaml: "module:\n  organization: acme\n  name: app\n"},
		{name: "unknown repository kind", yaml: projectYAML + "  - id: weird\n    kind: ftp\n"},
		{name: "unknown top-level key", yaml: projectYAML + "unknown: true\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := descriptor.ParseFile([]byte(tc.yaml))
			require.Error(t, err)
		})
	}
}

func TestDescribeCopiesSettings(t *testing.T) {
	r := require.New(t)
	settings := descriptor.Settings{
		Module:  descriptor.Coordinate{Organization: "acme", Name: "app"},
		Version: "1.0.0",
		Dependencies: []descriptor.Dependency{
			{Coordinate: descriptor.Coordinate{Organization: "acme", Name: "core"}, Constraint: "1.0.0", Configurations: []string{"compile"}},
		},
		Configurations: []descriptor.Configuration{{Name: "compile"}},
	}

	desc := descriptor.Describe(settings)
	native, ok := desc.(*descriptor.Native)
	r.True(ok)

	settings.Dependencies[0].Constraint = "9.9.9"
	settings.Configurations[0].Name = "mutated"

	r.Equal("1.0.0", native.Dependencies[0].Constraint)
	r.Equal("compile", native.Configurations[0].Name)
	r.Equal("acme:app", desc.Module().String())
}
