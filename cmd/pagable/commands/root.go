// Package commands implements the pagable command line.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "pagable",
		Short:         "Cursor pagination over Elasticsearch and OpenSearch",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml)")

	rootCmd.AddCommand(
		newPageCommand(&configPath),
		newWalkCommand(&configPath),
		newHealthCommand(&configPath),
		newVersionCommand(),
	)

	return rootCmd
}
