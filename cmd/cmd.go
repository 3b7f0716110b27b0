// Package cmd is the lockstep command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lockstep-build/lockstep/cmd/describe"
	"github.com/lockstep-build/lockstep/cmd/version"
	"github.com/lockstep-build/lockstep/internal/flags/log"
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lockstep [sub-command]",
		Short: "Resolve and fetch a project's dependencies reproducibly",
		Long: `lockstep resolves a project's declared dependencies into a concrete,
conflict-free set of versioned modules and reports what was resolved and
where each artifact lives on disk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := log.GetBaseLogger(cmd.Flags(), cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("could not build logger: %w", err)
			}
			slog.SetDefault(logger)
			return nil
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	log.RegisterLoggingFlags(cmd.PersistentFlags())
	cmd.AddCommand(describe.New())
	cmd.AddCommand(version.New())
	return cmd
}
