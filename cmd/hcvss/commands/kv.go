package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/hcvss/internal/config"
	hcverrors "github.com/systmms/hcvss/internal/errors"
	"github.com/systmms/hcvss/internal/vaultkv"
)

// NewKVCommand groups the key-value engine passthrough verbs. Every verb
// issues one Vault API call authenticated with VAULT_TOKEN and prints the
// response body, if any, as indented JSON on stdout.
func NewKVCommand(cfg *config.Config) *cobra.Command {
	var (
		address   string
		namespace string
	)

	cmd := &cobra.Command{
		Use:   "kv",
		Short: "Operate on a Vault key-value secrets engine",
		Long: `Direct passthrough to a KV v2 secrets engine.

The Vault token comes from VAULT_TOKEN; the server address from --address
or VAULT_ADDR. This surface is independent of the HCP fetch/check workflow
and needs none of the HCP_* variables.

Examples:
  hcvss kv get secret myapp/db
  hcvss kv put secret myapp/db password=s3cr3t --cas 2
  hcvss kv list secret myapp
  hcvss kv destroy secret myapp/db --versions 1,2`,
	}

	cmd.PersistentFlags().StringVar(&address, "address", "", "Vault server address (defaults to VAULT_ADDR)")
	cmd.PersistentFlags().StringVar(&namespace, "namespace", "", "Vault namespace (defaults to VAULT_NAMESPACE)")

	newClient := func() (*vaultkv.Client, error) {
		cfg.LoadVault()
		addr := address
		if addr == "" {
			addr = cfg.VaultAddress
		}
		if addr == "" {
			return nil, hcverrors.UserError{
				Message:    "no Vault address configured",
				Suggestion: "pass --address or set VAULT_ADDR",
			}
		}
		if cfg.VaultToken == "" {
			return nil, hcverrors.UserError{
				Message:    "no Vault token available",
				Suggestion: "set VAULT_TOKEN",
			}
		}
		ns := namespace
		if ns == "" {
			ns = cfg.VaultNamespace
		}
		return vaultkv.NewClient(vaultkv.Config{
			Address:   addr,
			Token:     cfg.VaultToken,
			Namespace: ns,
		}), nil
	}

	cmd.AddCommand(
		newKVConfigCommand(newClient),
		newKVGetCommand(newClient),
		newKVPutCommand(newClient),
		newKVPatchCommand(newClient),
		newKVSubkeysCommand(newClient),
		newKVListCommand(newClient),
		newKVMetadataCommand(newClient),
		newKVDeleteCommand(newClient),
		newKVUndeleteCommand(newClient),
		newKVDestroyCommand(newClient),
	)

	return cmd
}

type kvClientFunc func() (*vaultkv.Client, error)

func printJSON(w io.Writer, body map[string]interface{}) error {
	if body == nil {
		return nil
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(body)
}

// parseKVPairs turns key=value arguments into a map.
func parseKVPairs(args []string) (map[string]interface{}, error) {
	data := make(map[string]interface{}, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, hcverrors.UserError{
				Message:    fmt.Sprintf("invalid data argument %q", arg),
				Suggestion: "pass data as key=value pairs",
			}
		}
		data[key] = value
	}
	return data, nil
}

func newKVConfigCommand(newClient kvClientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or write the engine configuration",
	}

	readCmd := &cobra.Command{
		Use:   "read MOUNT",
		Short: "Read the engine configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			resp, err := client.ReadEngineConfig(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	var engineCfg vaultkv.EngineConfig
	writeCmd := &cobra.Command{
		Use:   "write MOUNT",
		Short: "Write the engine configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			return client.ConfigureEngine(cmd.Context(), args[0], engineCfg)
		},
	}
	writeCmd.Flags().IntVar(&engineCfg.MaxVersions, "max-versions", 0, "Maximum versions kept per secret")
	writeCmd.Flags().BoolVar(&engineCfg.CASRequired, "cas-required", false, "Require check-and-set on writes")
	writeCmd.Flags().StringVar(&engineCfg.DeleteVersionAfter, "delete-version-after", "0s", "Version retention duration")

	cmd.AddCommand(readCmd, writeCmd)
	return cmd
}

func newKVGetCommand(newClient kvClientFunc) *cobra.Command {
	var version int

	cmd := &cobra.Command{
		Use:   "get MOUNT PATH",
		Short: "Read a secret version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			resp, err := client.ReadSecretVersion(cmd.Context(), args[0], args[1], version)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().IntVar(&version, "version", 0, "Secret version to read (0 = current)")
	return cmd
}

func newKVPutCommand(newClient kvClientFunc) *cobra.Command {
	var cas int

	cmd := &cobra.Command{
		Use:   "put MOUNT PATH KEY=VALUE...",
		Short: "Write a new secret version",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			data, err := parseKVPairs(args[2:])
			if err != nil {
				return err
			}

			var casPtr *int
			if cmd.Flags().Changed("cas") {
				casPtr = &cas
			}

			resp, err := client.CreateSecret(cmd.Context(), args[0], args[1], data, casPtr)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().IntVar(&cas, "cas", 0, "Check-and-set version guard")
	return cmd
}

func newKVPatchCommand(newClient kvClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "patch MOUNT PATH KEY=VALUE...",
		Short: "Merge fields into the current secret version",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			data, err := parseKVPairs(args[2:])
			if err != nil {
				return err
			}
			resp, err := client.PatchSecret(cmd.Context(), args[0], args[1], data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newKVSubkeysCommand(newClient kvClientFunc) *cobra.Command {
	var (
		version int
		depth   int
	)

	cmd := &cobra.Command{
		Use:   "subkeys MOUNT PATH",
		Short: "Read a secret's structure without its values",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			resp, err := client.ReadSubkeys(cmd.Context(), args[0], args[1], version, depth)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().IntVar(&version, "version", 0, "Secret version to inspect (0 = current)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Nesting depth to report (0 = unlimited)")
	return cmd
}

func newKVListCommand(newClient kvClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list MOUNT [PATH]",
		Short: "List secret names under a path",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			secretPath := ""
			if len(args) == 2 {
				secretPath = args[1]
			}
			resp, err := client.ListSecrets(cmd.Context(), args[0], secretPath)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newKVMetadataCommand(newClient kvClientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Read, write, or delete secret metadata",
	}

	readCmd := &cobra.Command{
		Use:   "read MOUNT PATH",
		Short: "Read metadata and version history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			resp, err := client.ReadMetadata(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	var params vaultkv.MetadataParams
	var custom []string
	writeCmd := &cobra.Command{
		Use:   "write MOUNT PATH",
		Short: "Replace metadata settings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if len(custom) > 0 {
				pairs, err := parseKVPairs(custom)
				if err != nil {
					return err
				}
				params.CustomMetadata = make(map[string]string, len(pairs))
				for k, v := range pairs {
					params.CustomMetadata[k] = v.(string)
				}
			}
			return client.UpdateMetadata(cmd.Context(), args[0], args[1], params)
		},
	}
	writeCmd.Flags().IntVar(&params.MaxVersions, "max-versions", 0, "Maximum versions kept for this secret")
	writeCmd.Flags().BoolVar(&params.CASRequired, "cas-required", false, "Require check-and-set on writes")
	writeCmd.Flags().StringVar(&params.DeleteVersionAfter, "delete-version-after", "0s", "Version retention duration")
	writeCmd.Flags().StringSliceVar(&custom, "custom-metadata", nil, "Custom metadata as key=value pairs")

	deleteCmd := &cobra.Command{
		Use:   "delete MOUNT PATH",
		Short: "Delete metadata and all versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			return client.DeleteMetadata(cmd.Context(), args[0], args[1])
		},
	}

	cmd.AddCommand(readCmd, writeCmd, deleteCmd)
	return cmd
}

func newKVDeleteCommand(newClient kvClientFunc) *cobra.Command {
	var versions []int

	cmd := &cobra.Command{
		Use:   "delete MOUNT PATH",
		Short: "Soft-delete secret versions",
		Long: `Soft-delete the current version, or the versions given with --versions.
Deleted versions can be restored with 'kv undelete'.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				return client.DeleteLatestVersion(cmd.Context(), args[0], args[1])
			}
			return client.DeleteVersions(cmd.Context(), args[0], args[1], versions)
		},
	}

	cmd.Flags().IntSliceVar(&versions, "versions", nil, "Versions to delete (default: current)")
	return cmd
}

func newKVUndeleteCommand(newClient kvClientFunc) *cobra.Command {
	var versions []int

	cmd := &cobra.Command{
		Use:   "undelete MOUNT PATH",
		Short: "Restore soft-deleted secret versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				return hcverrors.UserError{
					Message:    "no versions given",
					Suggestion: "pass --versions with the versions to restore",
				}
			}
			return client.UndeleteVersions(cmd.Context(), args[0], args[1], versions)
		},
	}

	cmd.Flags().IntSliceVar(&versions, "versions", nil, "Versions to restore")
	return cmd
}

func newKVDestroyCommand(newClient kvClientFunc) *cobra.Command {
	var versions []int

	cmd := &cobra.Command{
		Use:   "destroy MOUNT PATH",
		Short: "Permanently destroy secret versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				return hcverrors.UserError{
					Message:    "no versions given",
					Suggestion: "pass --versions with the versions to destroy",
				}
			}
			return client.DestroyVersions(cmd.Context(), args[0], args[1], versions)
		},
	}

	cmd.Flags().IntSliceVar(&versions, "versions", nil, "Versions to destroy")
	return cmd
}
