package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/hcvss/internal/config"
	"github.com/systmms/hcvss/internal/scan"
)

func NewCheckCommand(cfg *config.Config) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check secrets in the local file for short values",
		Long: `Check every secret value in the local secrets file and print a message
for each value of 20 characters or fewer.

A missing or unreadable file is reported and treated as zero findings;
findings themselves are not a failure. The command exits non-zero only on
a configuration error.

Examples:
  hcvss check
  hcvss check --file staging_secrets.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			scanner := scan.New(cfg.Logger)
			messages := scanner.Check(filePath)
			cfg.Logger.Debug("check finished with %d finding(s)", len(messages))

			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", scan.DefaultSecretsFile,
		"The secrets file to check")

	return cmd
}
