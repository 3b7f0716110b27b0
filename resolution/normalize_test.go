package resolution_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lockstep-build/lockstep/descriptor"
	"github.com/lockstep-build/lockstep/engine"
	"github.com/lockstep-build/lockstep/repository"
	"github.com/lockstep-build/lockstep/resolution"
)

func testSettings() descriptor.Settings {
	return descriptor.Settings{
		Module:  descriptor.Coordinate{Organization: "acme", Name: "app"},
		Version: "1.2.3",
		Configurations: []descriptor.Configuration{
			{Name: "compile"},
		},
		Dependencies: []descriptor.Dependency{
			{
				Coordinate:     descriptor.Coordinate{Organization: "acme", Name: "core"},
				Constraint:     "1.0.0",
				Configurations: []string{"compile"},
				Transitive:     true,
			},
		},
	}
}

func testDefaults() resolution.Defaults {
	defaults := resolution.NewDefaults()
	defaults.ToolchainVersion = "3.4.1"
	return defaults
}

func TestNormalizePlatform(t *testing.T) {
	t.Run("explicit override wins", func(t *testing.T) {
		r := require.New(t)
		settings := testSettings()
		settings.Platform = &descriptor.Platform{Organization: "declared.org", Version: "2.0.0"}

		req, err := resolution.Normalize(descriptor.Describe(settings), resolution.UpdateConfiguration{
			PlatformOrganization: "override.org",
			PlatformVersion:      "9.9.9",
		}, testDefaults())
		r.NoError(err)
		r.Equal("override.org", req.Platform.Organization)
		r.Equal("9.9.9", req.Platform.Version)
	})

	t.Run("declared module info is the second source", func(t *testing.T) {
		r := require.New(t)
		settings := testSettings()
		settings.Platform = &descriptor.Platform{Organization: "declared.org", Version: "2.0.0"}

		req, err := resolution.Normalize(descriptor.Describe(settings), resolution.UpdateConfiguration{}, testDefaults())
		r.NoError(err)
		r.Equal("declared.org", req.Platform.Organization)
		r.Equal("2.0.0", req.Platform.Version)
	})

	t.Run("defaults are the last fallback", func(t *testing.T) {
		r := require.New(t)
		req, err := resolution.Normalize(descriptor.Describe(testSettings()), resolution.UpdateConfiguration{}, testDefaults())
		r.NoError(err)
		r.Equal(resolution.DefaultPlatformOrganization, req.Platform.Organization)
		r.Equal("3.4.1", req.Platform.Version)
	})

	t.Run("binary version derives from the first two components", func(t *testing.T) {
		r := require.New(t)
		req, err := resolution.Normalize(descriptor.Describe(testSettings()), resolution.UpdateConfiguration{
			PlatformVersion: "2.13.14",
		}, testDefaults())
		r.NoError(err)
		r.Equal("2.13", req.Platform.BinaryVersion)
	})

	t.Run("declared binary version is kept", func(t *testing.T) {
		r := require.New(t)
		settings := testSettings()
		settings.Platform = &descriptor.Platform{Version: "2.13.14", BinaryVersion: "2.13.0-M1"}

		req, err := resolution.Normalize(descriptor.Describe(settings), resolution.UpdateConfiguration{}, testDefaults())
		r.NoError(err)
		r.Equal("2.13.0-M1", req.Platform.BinaryVersion)
	})

	t.Run("missing platform version everywhere is an error", func(t *testing.T) {
		r := require.New(t)
		defaults := resolution.NewDefaults()
		_, err := resolution.Normalize(descriptor.Describe(testSettings()), resolution.UpdateConfiguration{}, defaults)
		r.Error(err)
		r.ErrorContains(err, "no platform version")
	})
}

func TestNormalizeExclusions(t *testing.T) {
	r := require.New(t)
	settings := testSettings()
	settings.Dependencies[0].Exclusions = []descriptor.Exclusion{
		{Organization: "bad", Name: "lib"},
		{Organization: "shared", Name: "dup"},
	}

	req, err := resolution.Normalize(descriptor.Describe(settings), resolution.UpdateConfiguration{
		Exclusions: []descriptor.Exclusion{
			{Organization: "global", Name: "banned"},
			{Organization: "shared", Name: "dup"},
		},
	}, testDefaults())
	r.NoError(err)

	r.Equal([]descriptor.Exclusion{
		{Organization: "bad", Name: "lib"},
		{Organization: "global", Name: "banned"},
		{Organization: "shared", Name: "dup"},
	}, req.Dependencies[0].Exclusions)
}

func TestNormalizeClassifiers(t *testing.T) {
	r := require.New(t)

	req, err := resolution.Normalize(descriptor.Describe(testSettings()), resolution.UpdateConfiguration{}, testDefaults())
	r.NoError(err)
	r.Nil(req.Classifiers)

	req, err = resolution.Normalize(descriptor.Describe(testSettings()), resolution.UpdateConfiguration{
		Classifiers: []string{"sources", "javadoc"},
	}, testDefaults())
	r.NoError(err)
	r.Equal([]string{"sources", "javadoc"}, req.Classifiers)
}

func TestNormalizeRepositories(t *testing.T) {
	r := require.New(t)
	declared := []repository.Declared{
		{ID: "central", Kind: repository.KindMaven, URL: "https://repo.example.com/releases"},
		{ID: "local", Kind: repository.KindLocal},
		{ID: "mirror", Kind: repository.KindMaven, URL: "https://mirror.example.com"},
	}

	req, err := resolution.Normalize(descriptor.Describe(testSettings()), resolution.UpdateConfiguration{
		Repositories:     declared,
		SortRepositories: true,
	}, testDefaults())
	r.NoError(err)

	ids := make([]string, 0, len(req.Repositories))
	for _, spec := range req.Repositories {
		ids = append(ids, spec.ID)
	}
	// local first, remotes keep declaration order, synthetic repositories
	// appended after the user ones.
	r.Equal([]string{"local", "central", "mirror", "plugin-releases", "plugin-snapshots"}, ids)
}

func TestNormalizeCachePolicyTTL(t *testing.T) {
	t.Run("default tunable TTL reaches the cache policy", func(t *testing.T) {
		r := require.New(t)
		defaults := testDefaults()
		defaults.Tunables.MetadataTTL = 42 * time.Minute

		req, err := resolution.Normalize(descriptor.Describe(testSettings()), resolution.UpdateConfiguration{}, defaults)
		r.NoError(err)
		r.Equal(42*time.Minute, req.CachePolicy.MetadataTTL)
	})

	t.Run("per-call tunable TTL wins over defaults", func(t *testing.T) {
		r := require.New(t)
		defaults := testDefaults()
		defaults.Tunables.MetadataTTL = 42 * time.Minute

		req, err := resolution.Normalize(descriptor.Describe(testSettings()), resolution.UpdateConfiguration{
			Tunables: resolution.Tunables{MetadataTTL: 5 * time.Minute},
		}, defaults)
		r.NoError(err)
		r.Equal(5*time.Minute, req.CachePolicy.MetadataTTL)
	})

	t.Run("explicit cache policy TTL wins over every tunable", func(t *testing.T) {
		r := require.New(t)
		defaults := testDefaults()
		defaults.Tunables.MetadataTTL = 42 * time.Minute

		req, err := resolution.Normalize(descriptor.Describe(testSettings()), resolution.UpdateConfiguration{
			CachePolicy: engine.CachePolicy{MetadataTTL: time.Hour},
		}, defaults)
		r.NoError(err)
		r.Equal(time.Hour, req.CachePolicy.MetadataTTL)
	})
}

func TestNormalizeInvalidConstraint(t *testing.T) {
	r := require.New(t)
	settings := testSettings()
	settings.Dependencies[0].Constraint = "not a version"

	_, err := resolution.Normalize(descriptor.Describe(settings), resolution.UpdateConfiguration{}, testDefaults())
	r.Error(err)
	r.ErrorContains(err, "invalid version constraint")
}

func TestNormalizeUnknownDescriptorPanics(t *testing.T) {
	require.Panics(t, func() {
		_, _ = resolution.Normalize(nil, resolution.UpdateConfiguration{}, testDefaults())
	})
}
