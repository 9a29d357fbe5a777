package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Args:  cobra.NoArgs,
		Short: "Check the configured search engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			results := a.health.CheckAll(cmd.Context())
			out, err := encodeJSON(results, true)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
			for _, r := range results {
				if !r.Healthy {
					return fmt.Errorf("%s is unhealthy: %s", r.Component, r.Error)
				}
			}
			return nil
		},
	}
}
