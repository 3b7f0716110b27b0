package descriptor

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
	sigsyaml "sigs.k8s.io/yaml"
)

//go:embed project.schema.json
var projectSchema []byte

// File is the on-disk project descriptor (lockstep.yaml). It is validated
// against the embedded JSON schema before decoding, so a structurally broken
// file fails with a schema error instead of a half-populated struct.
type File struct {
	Module struct {
		Organization string            `json:"organization"`
		Name         string            `json:"name"`
		Version      string            `json:"version"`
		Attributes   map[string]string `json:"attributes,omitempty"`
	} `json:"module"`
	Platform       *Platform        `json:"platform,omitempty"`
	Configurations []Configuration  `json:"configurations,omitempty"`
	Dependencies   []FileDependency `json:"dependencies,omitempty"`
	Repositories   []FileRepository `json:"repositories,omitempty"`
}

// FileDependency is the file representation of a dependency entry.
type FileDependency struct {
	Organization   string            `json:"organization"`
	Name           string            `json:"name"`
	Version        string            `json:"version"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	Configurations []string          `json:"configurations,omitempty"`
	Exclusions     []Exclusion       `json:"exclusions,omitempty"`
	Intransitive   bool              `json:"intransitive,omitempty"`
}

// FileRepository is a user-declared repository entry. Credentials are never
// part of the project file; they are merged in from the credential store
// during assembly.
type FileRepository struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	URL  string `json:"url,omitempty"`
}

var compiledProjectSchema = func() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(projectSchema))
	if err != nil {
		panic(fmt.Sprintf("embedded project schema is not valid JSON: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("project.schema.json", doc); err != nil {
		panic(fmt.Sprintf("adding embedded project schema failed: %v", err))
	}
	schema, err := compiler.Compile("project.schema.json")
	if err != nil {
		panic(fmt.Sprintf("compiling embedded project schema failed: %v", err))
	}
	return schema
}()

// LoadFile reads, validates and decodes a project file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file %q failed: %w", path, err)
	}
	file, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("parsing project file %q failed: %w", path, err)
	}
	return file, nil
}

// ParseFile validates the given YAML document against the project schema and
// decodes it.
func ParseFile(data []byte) (*File, error) {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("converting project file to JSON failed: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("decoding project file failed: %w", err)
	}
	if err := compiledProjectSchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("project file is not valid: %w", err)
	}

	var file File
	if err := sigsyaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding project file failed: %w", err)
	}
	return &file, nil
}

// Settings converts the file into descriptor settings.
func (f *File) Settings() Settings {
	deps := make([]Dependency, 0, len(f.Dependencies))
	for _, d := range f.Dependencies {
		deps = append(deps, Dependency{
			Coordinate: Coordinate{
				Organization: d.Organization,
				Name:         d.Name,
				Attributes:   d.Attributes,
			},
			Constraint:     d.Version,
			Configurations: d.Configurations,
			Exclusions:     d.Exclusions,
			Transitive:     !d.Intransitive,
		})
	}
	return Settings{
		Module: Coordinate{
			Organization: f.Module.Organization,
			Name:         f.Module.Name,
			Attributes:   f.Module.Attributes,
		},
		Version:        f.Module.Version,
		Platform:       f.Platform,
		Configurations: f.Configurations,
		Dependencies:   deps,
	}
}
