package repository_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lockstep-build/lockstep/descriptor"
	"github.com/lockstep-build/lockstep/repository"
)

func TestCredentialStoreLookup(t *testing.T) {
	store := repository.NewCredentialStore()
	store.SetForID("central", repository.Credential{Username: "id-user", Password: "id-pass"})
	store.SetForHost("repo.example.com", repository.Credential{Username: "host-user", Password: "host-pass"})

	t.Run("repository id wins over host", func(t *testing.T) {
		r := require.New(t)
		c := store.Lookup("central", "https://repo.example.com/releases")
		r.NotNil(c)
		r.Equal("id-user", c.Username)
	})

	t.Run("host is the fallback", func(t *testing.T) {
		r := require.New(t)
		c := store.Lookup("other", "https://repo.example.com/snapshots")
		r.NotNil(c)
		r.Equal("host-user", c.Username)
	})

	t.Run("scheme-less URL still matches by host", func(t *testing.T) {
		r := require.New(t)
		c := store.Lookup("other", "repo.example.com/releases")
		r.NotNil(c)
		r.Equal("host-user", c.Username)
	})

	t.Run("host with port matches by hostname", func(t *testing.T) {
		r := require.New(t)
		c := store.Lookup("other", "https://repo.example.com:8443/releases")
		r.NotNil(c)
		r.Equal("host-user", c.Username)
	})

	t.Run("no match yields nil", func(t *testing.T) {
		require.Nil(t, store.Lookup("unknown", "https://elsewhere.example.com"))
	})

	t.Run("nil store yields nil", func(t *testing.T) {
		var nilStore *repository.CredentialStore
		require.Nil(t, nilStore.Lookup("central", "https://repo.example.com"))
	})
}

func TestAssemble(t *testing.T) {
	declared := []repository.Declared{
		{ID: "central", Kind: repository.KindMaven, URL: "https://repo.example.com/releases"},
		{ID: "mirror", Kind: repository.KindMaven, URL: "https://mirror.example.com"},
		{ID: "central", Kind: repository.KindMaven, URL: "https://repo.example.com/releases"},
	}

	t.Run("user repositories first, synthetic appended, duplicates dropped", func(t *testing.T) {
		r := require.New(t)
		projects := []repository.ProjectRef{
			{Coordinate: descriptor.Coordinate{Organization: "acme", Name: "core"}, Version: "0.1.0"},
		}
		specs := repository.Assemble(declared, nil, projects)

		ids := make([]string, 0, len(specs))
		for _, s := range specs {
			ids = append(ids, s.ID)
		}
		r.Equal([]string{"central", "mirror", "plugin-releases", "plugin-snapshots", "inter-project"}, ids)

		last := specs[len(specs)-1]
		r.Equal(repository.KindInterProject, last.Kind)
		r.Len(last.Projects, 1)
	})

	t.Run("plugin pattern repositories are metadata only", func(t *testing.T) {
		r := require.New(t)
		specs := repository.Assemble(nil, nil, nil)
		r.Len(specs, 2)
		for _, s := range specs {
			r.Equal(repository.KindPluginPattern, s.Kind)
			r.True(s.MetadataOnly)
		}
	})

	t.Run("no inter-project spec without sibling projects", func(t *testing.T) {
		r := require.New(t)
		for _, s := range repository.Assemble(declared, nil, nil) {
			r.NotEqual(repository.KindInterProject, s.Kind)
		}
	})

	t.Run("credentials attach during assembly", func(t *testing.T) {
		r := require.New(t)
		store := repository.NewCredentialStore()
		store.SetForID("mirror", repository.Credential{Username: "mirror-user"})
		store.SetForHost("repo.example.com", repository.Credential{Username: "host-user"})

		specs := repository.Assemble(declared, store, nil)
		byID := make(map[string]repository.Spec)
		for _, s := range specs {
			byID[s.ID] = s
		}
		r.Equal("mirror-user", byID["mirror"].Credential.Username)
		r.Equal("host-user", byID["central"].Credential.Username)
		r.Nil(byID["plugin-releases"].Credential)
	})
}
