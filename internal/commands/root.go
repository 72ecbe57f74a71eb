package commands

import (
	"github.com/spf13/cobra"

	"github.com/flav-dev/flav/internal/buildinfo"
	"github.com/flav-dev/flav/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "flav",
		Short:   "Account grouping and client access administration",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "path to flav.yaml")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newChartCommand(&configPath))
	rootCmd.AddCommand(newClientsCommand(&configPath))

	return rootCmd
}
