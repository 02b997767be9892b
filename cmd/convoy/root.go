package main

import (
	"github.com/spf13/cobra"

	"github.com/convoy-ci/convoy/internal/logger"
)

type rootFlags struct {
	verbose      bool
	settingsPath string
}

func newRootCmd(log *logger.Logger) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "convoy",
		Short:         "Convoy runs connector CI pipelines and publishes their results",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.settingsPath, "settings", "", "Path to the runner settings file")

	cmd.AddCommand(newPlanCmd(flags, log))
	cmd.AddCommand(newMetadataCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
