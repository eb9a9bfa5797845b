// Package cli wires the command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shoptech",
		Short: "LoamLabs shop tech agent — chat backend for the wheel builder",
		Long: "shoptech serves the LoamLabs storefront chat widget: it forwards customer\n" +
			"messages to the language model, answers stock and lead-time questions from\n" +
			"the live catalog, and delegates spoke-length math to the calculation service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./shoptech.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
