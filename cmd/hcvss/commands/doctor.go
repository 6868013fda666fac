package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"github.com/systmms/hcvss/internal/config"
	"github.com/systmms/hcvss/internal/scan"
)

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the local hcvss setup",
		Long: `Report which environment variables are set, whether stored keyring
credentials exist, and whether the local secrets file is present.

Findings never cause a non-zero exit; doctor is purely informational.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Environment:")
			for _, status := range config.EnvReport() {
				mark := "✗"
				if status.Set {
					mark = "✓"
				}
				note := ""
				if status.Required && !status.Set {
					note = "  (required)"
				}
				fmt.Fprintf(out, "  %s %s%s\n", mark, status.Name, note)
			}

			fmt.Fprintln(out, "Keyring:")
			_, err := keyring.Get(config.KeyringService, config.KeyringClientID)
			switch {
			case err == nil:
				fmt.Fprintln(out, "  ✓ stored client credentials found")
			case errors.Is(err, keyring.ErrNotFound):
				fmt.Fprintln(out, "  ✗ no stored client credentials (run 'hcvss login')")
			default:
				fmt.Fprintf(out, "  ✗ keyring unavailable: %v\n", err)
			}

			fmt.Fprintln(out, "Secrets file:")
			if info, err := os.Stat(filePath); err == nil {
				fmt.Fprintf(out, "  ✓ %s (%d bytes)\n", filePath, info.Size())
			} else {
				fmt.Fprintf(out, "  ✗ %s not found (run 'hcvss fetch')\n", filePath)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", scan.DefaultSecretsFile,
		"The secrets file to look for")

	return cmd
}
