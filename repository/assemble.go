package repository

// pluginPatternRepositories is the fixed set of synthetic metadata-only
// repositories consulted for plugin descriptors.
func pluginPatternRepositories() []Spec {
	return []Spec{
		{ID: "plugin-releases", Kind: KindPluginPattern, MetadataOnly: true},
		{ID: "plugin-snapshots", Kind: KindPluginPattern, MetadataOnly: true},
	}
}

// Assemble produces the ordered, deduplicated repository list passed to the
// resolver engine.
//
// User repositories come first, in declaration order, each with its
// credential attached (by id, then by host). The synthetic repositories are
// appended after them: the plugin-pattern repositories, then one
// inter-project repository carrying the sibling modules of the build. The
// engine is expected to consult inter-project coordinates before any
// external repository even though the spec sits last in the list.
//
// Duplicates are removed by spec identity; the first occurrence wins.
func Assemble(declared []Declared, creds *CredentialStore, projects []ProjectRef) []Spec {
	specs := make([]Spec, 0, len(declared)+3)
	seen := make(map[string]struct{}, len(declared)+3)

	appendSpec := func(s Spec) {
		id := s.identity()
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		specs = append(specs, s)
	}

	for _, d := range declared {
		appendSpec(Spec{
			ID:         d.ID,
			Kind:       d.Kind,
			URL:        d.URL,
			Credential: creds.Lookup(d.ID, d.URL),
		})
	}

	for _, s := range pluginPatternRepositories() {
		appendSpec(s)
	}

	if len(projects) > 0 {
		appendSpec(Spec{
			ID:       "inter-project",
			Kind:     KindInterProject,
			Projects: projects,
		})
	}

	return specs
}
