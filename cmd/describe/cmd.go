// Package describe renders the normalized resolution request of a project
// file: its configuration sets, flattened dependencies and repository chain.
package describe

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lockstep-build/lockstep/descriptor"
	"github.com/lockstep-build/lockstep/repository"
	"github.com/lockstep-build/lockstep/resolution"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Describe the normalized resolution request of a project file",
		Long: `Describe loads a project file, normalizes it the same way the resolution
pipeline would, and renders the configuration sets, the dependencies visible
to each configuration, and the assembled repository chain. No resolver engine
is invoked.`,
		RunE: run,
	}
	cmd.Flags().StringP("file", "f", "lockstep.yaml", "project file to describe")
	cmd.Flags().String("credentials", "", "credential file merged into the repository chain")
	cmd.Flags().StringP("output", "o", "table", "output format (table, json)")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	credentialsPath, _ := cmd.Flags().GetString("credentials")
	output, _ := cmd.Flags().GetString("output")

	file, err := descriptor.LoadFile(path)
	if err != nil {
		return err
	}

	cfg := resolution.UpdateConfiguration{}
	for _, r := range file.Repositories {
		cfg.Repositories = append(cfg.Repositories, repository.Declared{
			ID:   r.ID,
			Kind: repository.Kind(r.Kind),
			URL:  r.URL,
		})
	}
	if credentialsPath != "" {
		creds, err := repository.LoadCredentialStore(credentialsPath)
		if err != nil {
			return err
		}
		cfg.Credentials = creds
	}

	defaults := resolution.NewDefaults()
	defaults.ToolchainVersion = "0.0.0"

	req, err := resolution.Normalize(descriptor.Describe(file.Settings()), cfg, defaults)
	if err != nil {
		return err
	}
	graph, err := resolution.BuildConfigGraph(req.Configurations, req.Dependencies)
	if err != nil {
		return err
	}

	switch output {
	case "json":
		return renderJSON(cmd, req, graph)
	case "table":
		return renderTables(cmd, req, graph)
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}
}

func renderJSON(cmd *cobra.Command, req *resolution.Request, graph *resolution.ConfigGraph) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"module":     req.Module,
		"version":    req.Version,
		"platform":   req.Platform,
		"configSets": graph.Sets,
	})
}

func renderTables(cmd *cobra.Command, req *resolution.Request, graph *resolution.ConfigGraph) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "module %s@%s (platform %s %s)\n\n", req.Module, req.Version, req.Platform.Organization, req.Platform.Version)

	sets := table.NewWriter()
	sets.AppendHeader(table.Row{"Config Set", "Members", "Scope"})
	for _, set := range graph.Sets {
		sets.AppendRow(table.Row{set.Key, strings.Join(set.Members, ", "), strings.Join(set.Scope, ", ")})
	}
	sets.SetStyle(table.StyleLight)
	fmt.Fprintln(out, sets.Render())

	deps := table.NewWriter()
	deps.AppendHeader(table.Row{"Configuration", "Dependency", "Constraint", "Exclusions"})
	for _, set := range graph.Sets {
		for _, member := range set.Members {
			for _, dep := range graph.Dependencies[member] {
				exclusions := make([]string, 0, len(dep.Exclusions))
				for _, e := range dep.Exclusions {
					exclusions = append(exclusions, e.String())
				}
				deps.AppendRow(table.Row{member, dep.Coordinate.String(), dep.Constraint, strings.Join(exclusions, ", ")})
			}
		}
	}
	deps.SetStyle(table.StyleLight)
	fmt.Fprintln(out, deps.Render())

	repos := table.NewWriter()
	repos.AppendHeader(table.Row{"#", "ID", "Kind", "URL", "Auth"})
	for i, spec := range req.Repositories {
		auth := ""
		if spec.Credential != nil {
			auth = spec.Credential.Username
		}
		repos.AppendRow(table.Row{i + 1, spec.ID, string(spec.Kind), spec.URL, auth})
	}
	repos.SetStyle(table.StyleLight)
	fmt.Fprintln(out, repos.Render())

	return nil
}
