package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/convoy-ci/convoy/internal/metadata"
)

func newMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <connector-dir>",
		Short: "Print the connector's declared image and enabled test suites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accessor := metadata.NewAccessor(args[0])

			image, err := accessor.DockerImage()
			if err != nil {
				return err
			}
			suites, err := accessor.EnabledTestSuites()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "image: %s\n", image)
			if len(suites) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "test suites: none")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "test suites: %s\n", strings.Join(suites, ", "))
			return nil
		},
	}
}
