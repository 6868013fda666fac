package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systmms/hcvss/cmd/hcvss/commands"
	"github.com/systmms/hcvss/internal/config"
	"github.com/systmms/hcvss/internal/logging"
)

const appName = "hcvss"

var (
	version = "0.2.0"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		noColor bool
		debug   bool
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Scan HCP Vault Secrets for weak secret values",
		Long: `hcvss fetches secrets from an HCP Vault Secrets application and checks
each secret value against a minimum-length rule.

fetch writes the raw API response to a local file; check reads that file
and reports every secret value of 20 characters or fewer.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Logger = logging.New(debug, noColor)
		},
	}

	// The version flag is handled eagerly by cobra, before any hook or
	// subcommand logic runs.
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s v{{.Version}}\n", appName))
	rootCmd.Flags().BoolP("version", "v", false, "Show the application version and exit")

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewFetchCommand(cfg),
		commands.NewCheckCommand(cfg),
		commands.NewLoginCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewKVCommand(cfg),
	)

	return rootCmd.Execute()
}
