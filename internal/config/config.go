// Package config loads hcvss configuration from the process environment.
//
// This is the only place ambient environment state is read: main constructs
// one Config and passes it into the commands, which hand it to whichever
// component needs it.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"

	hcverrors "github.com/systmms/hcvss/internal/errors"
	"github.com/systmms/hcvss/internal/logging"
	"github.com/systmms/hcvss/internal/secure"
)

// Environment variables consumed by hcvss.
const (
	EnvOrganizationID = "HCP_ORGANIZATION_ID"
	EnvProjectID      = "HCP_PROJECT_ID"
	EnvAppName        = "HCP_APP_NAME"
	EnvClientID       = "HCP_CLIENT_ID"
	EnvClientSecret   = "HCP_CLIENT_SECRET"
)

// Environment variables for the generic key-value engine surface.
const (
	EnvVaultToken     = "VAULT_TOKEN"
	EnvVaultAddr      = "VAULT_ADDR"
	EnvVaultNamespace = "VAULT_NAMESPACE"
)

// Keyring coordinates for credentials stored by 'hcvss login'.
const (
	KeyringService      = "hcvss"
	KeyringClientID     = "hcp-client-id"
	KeyringClientSecret = "hcp-client-secret"
)

const apiBase = "https://api.cloud.hashicorp.com/secrets/2023-11-28"

// Config holds everything loaded at startup. Loaded is set by Load; the
// Logger is injected by the root command before any subcommand runs.
type Config struct {
	OrganizationID string
	ProjectID      string
	AppName        string

	// ClientID and ClientSecret come from the environment, falling back to
	// the OS keyring. Both may be empty: the token exchange then fails
	// upstream with a clear error, which is the contract for fetch.
	ClientID     string
	ClientSecret *secure.Buffer

	// Settings for the generic key-value engine surface, populated by
	// LoadVault. Independent of the HCP identifiers above.
	VaultToken     string
	VaultAddress   string
	VaultNamespace string

	Logger *logging.Logger
	Loaded bool
}

// LoadVault reads the key-value engine settings. Kept separate from Load
// because the kv surface does not depend on the HCP identifiers and must not
// fail when they are absent.
func (c *Config) LoadVault() {
	c.VaultToken = os.Getenv(EnvVaultToken)
	c.VaultAddress = os.Getenv(EnvVaultAddr)
	c.VaultNamespace = os.Getenv(EnvVaultNamespace)
}

// Load reads the required identifiers and optional credentials. A missing
// required identifier is fatal and the error names every missing variable.
// Idempotent: a second call is a no-op.
func (c *Config) Load() error {
	if c.Loaded {
		return nil
	}
	if c.Logger == nil {
		c.Logger = logging.New(false, false)
	}

	required := []string{EnvOrganizationID, EnvProjectID, EnvAppName}
	var missing []string
	for _, name := range required {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return hcverrors.ConfigError{Missing: missing}
	}

	c.OrganizationID = os.Getenv(EnvOrganizationID)
	c.ProjectID = os.Getenv(EnvProjectID)
	c.AppName = os.Getenv(EnvAppName)

	c.ClientID = os.Getenv(EnvClientID)
	if c.ClientID == "" {
		if v, err := keyring.Get(KeyringService, KeyringClientID); err == nil {
			c.ClientID = v
			c.Logger.Debug("using client id from OS keyring")
		} else if !errors.Is(err, keyring.ErrNotFound) {
			c.Logger.Debug("keyring lookup failed: %v", err)
		}
	}

	secretValue := os.Getenv(EnvClientSecret)
	if secretValue == "" {
		if v, err := keyring.Get(KeyringService, KeyringClientSecret); err == nil {
			secretValue = v
			c.Logger.Debug("using client secret from OS keyring")
		} else if !errors.Is(err, keyring.ErrNotFound) {
			c.Logger.Debug("keyring lookup failed: %v", err)
		}
	}
	c.ClientSecret = secure.NewBufferFromString(secretValue)

	c.Loaded = true
	return nil
}

// BaseURL returns the HCP Vault Secrets application endpoint for the
// configured organization, project, and app.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("%s/organizations/%s/projects/%s/apps/%s",
		apiBase, c.OrganizationID, c.ProjectID, c.AppName)
}

// HasCredentials reports whether a client id was resolved from the
// environment or keyring. Used by doctor for diagnostics only.
func (c *Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != nil && !c.ClientSecret.IsEmpty()
}

// EnvStatus describes one environment variable for diagnostics.
type EnvStatus struct {
	Name     string
	Set      bool
	Required bool
}

// EnvReport returns the presence of every variable hcvss reads, in a fixed
// order. Doctor renders this; no other code inspects the environment.
func EnvReport() []EnvStatus {
	report := make([]EnvStatus, 0, 6)
	for _, name := range []string{EnvOrganizationID, EnvProjectID, EnvAppName} {
		report = append(report, EnvStatus{Name: name, Set: os.Getenv(name) != "", Required: true})
	}
	for _, name := range []string{EnvClientID, EnvClientSecret, EnvVaultToken} {
		report = append(report, EnvStatus{Name: name, Set: os.Getenv(name) != ""})
	}
	return report
}
