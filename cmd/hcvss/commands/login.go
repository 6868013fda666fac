package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"github.com/systmms/hcvss/internal/config"
	hcverrors "github.com/systmms/hcvss/internal/errors"
)

func NewLoginCommand(cfg *config.Config) *cobra.Command {
	var (
		clientID     string
		clientSecret string
		clear        bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store HCP client credentials in the OS keyring",
		Long: `Store an HCP service principal's client id and secret in the OS keyring.

fetch falls back to these credentials whenever HCP_CLIENT_ID and
HCP_CLIENT_SECRET are not set in the environment, so the secret does not
have to live in shell history or profile files.

Examples:
  hcvss login --client-id <id> --client-secret <secret>
  hcvss login --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clear {
				for _, account := range []string{config.KeyringClientID, config.KeyringClientSecret} {
					if err := keyring.Delete(config.KeyringService, account); err != nil &&
						!errors.Is(err, keyring.ErrNotFound) {
						return err
					}
				}
				cfg.Logger.Info("removed stored credentials")
				return nil
			}

			if clientID == "" || clientSecret == "" {
				return hcverrors.UserError{
					Message:    "both --client-id and --client-secret are required",
					Suggestion: "create a service principal in the HCP portal and pass its credentials",
				}
			}

			if err := keyring.Set(config.KeyringService, config.KeyringClientID, clientID); err != nil {
				return hcverrors.UserError{
					Message:    "failed to store client id in the OS keyring",
					Suggestion: "ensure a keyring service is available (Keychain, Secret Service, or Credential Manager)",
					Err:        err,
				}
			}
			if err := keyring.Set(config.KeyringService, config.KeyringClientSecret, clientSecret); err != nil {
				return hcverrors.UserError{
					Message:    "failed to store client secret in the OS keyring",
					Suggestion: "ensure a keyring service is available (Keychain, Secret Service, or Credential Manager)",
					Err:        err,
				}
			}

			cfg.Logger.Info("stored credentials for client %s", clientID)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "HCP service principal client id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "HCP service principal client secret")
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove stored credentials")

	return cmd
}
