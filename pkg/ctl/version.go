package ctl

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the nodedashctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "nodedashctl "+version)
		},
	}
}

func newHealthCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the dashboard itself is serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := root.client()
			if err != nil {
				return err
			}

			health, err := api.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch health: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				okStyle.Render(health.Status)+dimStyle.Render("  nodedash "+health.Version+", default container "+health.DefaultContainer))
			return nil
		},
	}
}
