package repository

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CredentialStore holds repository credentials keyed by repository id and by
// host. Lookup prefers the explicit repository id and falls back to the host
// of the repository URL; a single lookup never applies both.
type CredentialStore struct {
	byID   map[string]Credential
	byHost map[string]Credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		byID:   make(map[string]Credential),
		byHost: make(map[string]Credential),
	}
}

// SetForID registers a credential for an explicit repository id.
func (s *CredentialStore) SetForID(id string, c Credential) {
	s.byID[id] = c
}

// SetForHost registers a credential for a repository host.
func (s *CredentialStore) SetForHost(host string, c Credential) {
	s.byHost[host] = c
}

// Lookup returns the credential for a repository, matching the repository id
// first and the host of the repository URL second. Returns nil if neither
// matches.
func (s *CredentialStore) Lookup(id, rawURL string) *Credential {
	if s == nil {
		return nil
	}
	if c, ok := s.byID[id]; ok {
		return &c
	}
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}
	if c, ok := s.byHost[strings.ToLower(host)]; ok {
		return &c
	}
	return nil
}

func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	// A scheme-less URL like repo.example.com/releases parses as a pure
	// path; force authority parsing so the host still matches.
	if !strings.Contains(rawURL, "://") {
		rawURL = "//" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// credentialFile is the on-disk credential format (credentials.yaml).
type credentialFile struct {
	Repositories map[string]Credential `yaml:"repositories"`
	Hosts        map[string]Credential `yaml:"hosts"`
}

// LoadCredentialStore reads a credential file. Decoding is strict; unknown
// keys are an error so that typos do not silently drop credentials.
func LoadCredentialStore(path string) (*CredentialStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening credential file %q failed: %w", path, err)
	}
	defer f.Close()

	var file credentialFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding credential file %q failed: %w", path, err)
	}

	store := NewCredentialStore()
	for id, c := range file.Repositories {
		store.SetForID(id, c)
	}
	for host, c := range file.Hosts {
		store.SetForHost(strings.ToLower(host), c)
	}
	return store, nil
}
