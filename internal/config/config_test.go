package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	hcverrors "github.com/systmms/hcvss/internal/errors"
	"github.com/systmms/hcvss/internal/logging"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv(EnvOrganizationID, "org-123")
	t.Setenv(EnvProjectID, "proj-456")
	t.Setenv(EnvAppName, "my-app")
}

func TestConfig_Load_Success(t *testing.T) {
	keyring.MockInit()
	setRequiredEnv(t)
	t.Setenv(EnvClientID, "cid")
	t.Setenv(EnvClientSecret, "csecret")

	cfg := &Config{Logger: logging.New(false, true)}
	require.NoError(t, cfg.Load())

	assert.True(t, cfg.Loaded)
	assert.Equal(t, "org-123", cfg.OrganizationID)
	assert.Equal(t, "proj-456", cfg.ProjectID)
	assert.Equal(t, "my-app", cfg.AppName)
	assert.Equal(t, "cid", cfg.ClientID)
	assert.True(t, cfg.HasCredentials())
}

func TestConfig_Load_MissingVariablesAllNamed(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvOrganizationID, "")
	t.Setenv(EnvProjectID, "proj-456")
	t.Setenv(EnvAppName, "")

	cfg := &Config{Logger: logging.New(false, true)}
	err := cfg.Load()
	require.Error(t, err)

	var cfgErr hcverrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{EnvOrganizationID, EnvAppName}, cfgErr.Missing)
	assert.Contains(t, err.Error(), EnvOrganizationID)
	assert.Contains(t, err.Error(), EnvAppName)
	assert.NotContains(t, err.Error(), EnvProjectID)
	assert.False(t, cfg.Loaded)
}

func TestConfig_Load_AllMissing(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvOrganizationID, "")
	t.Setenv(EnvProjectID, "")
	t.Setenv(EnvAppName, "")

	cfg := &Config{Logger: logging.New(false, true)}
	err := cfg.Load()

	var cfgErr hcverrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Missing, 3)
}

func TestConfig_Load_KeyringFallback(t *testing.T) {
	keyring.MockInit()
	setRequiredEnv(t)
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	require.NoError(t, keyring.Set(KeyringService, KeyringClientID, "ring-cid"))
	require.NoError(t, keyring.Set(KeyringService, KeyringClientSecret, "ring-secret"))

	cfg := &Config{Logger: logging.New(false, true)}
	require.NoError(t, cfg.Load())

	assert.Equal(t, "ring-cid", cfg.ClientID)
	var got string
	require.NoError(t, cfg.ClientSecret.With(func(v []byte) error {
		got = string(v)
		return nil
	}))
	assert.Equal(t, "ring-secret", got)
}

func TestConfig_Load_EnvironmentWinsOverKeyring(t *testing.T) {
	keyring.MockInit()
	setRequiredEnv(t)
	t.Setenv(EnvClientID, "env-cid")
	t.Setenv(EnvClientSecret, "env-secret")

	require.NoError(t, keyring.Set(KeyringService, KeyringClientID, "ring-cid"))

	cfg := &Config{Logger: logging.New(false, true)}
	require.NoError(t, cfg.Load())

	assert.Equal(t, "env-cid", cfg.ClientID)
}

func TestConfig_Load_NoCredentialsAnywhere(t *testing.T) {
	keyring.MockInit()
	setRequiredEnv(t)
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	// Credentials are not required at load time: the token exchange fails
	// upstream with a clear error instead.
	cfg := &Config{Logger: logging.New(false, true)}
	require.NoError(t, cfg.Load())
	assert.False(t, cfg.HasCredentials())
}

func TestConfig_BaseURL(t *testing.T) {
	cfg := &Config{
		OrganizationID: "org-123",
		ProjectID:      "proj-456",
		AppName:        "my-app",
	}

	assert.Equal(t,
		"https://api.cloud.hashicorp.com/secrets/2023-11-28/organizations/org-123/projects/proj-456/apps/my-app",
		cfg.BaseURL())
}
