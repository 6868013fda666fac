package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/systmms/hcvss/internal/config"
	hcverrors "github.com/systmms/hcvss/internal/errors"
)

func TestCheckCommand_ReportsShortSecrets(t *testing.T) {
	keyring.MockInit()
	setHCPEnv(t)

	path := filepath.Join(t.TempDir(), "test_secrets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"secrets": [
		{"static_version": {"value": "short"}},
		{"static_version": {"value": "this_is_a_long_enough_secret_value"}}
	]}`), 0o600))

	cmd := NewCheckCommand(newTestConfig())
	cmd.SetArgs([]string{"--file", path})

	var runErr error
	output := captureStdout(t, func() {
		runErr = cmd.Execute()
	})

	require.NoError(t, runErr)
	assert.Equal(t, "Secret short is too short: 5 characters\n", output)
}

func TestCheckCommand_MissingFileExitsZero(t *testing.T) {
	keyring.MockInit()
	setHCPEnv(t)

	cmd := NewCheckCommand(newTestConfig())
	cmd.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "never_fetched.json")})

	var runErr error
	output := captureStdout(t, func() {
		runErr = cmd.Execute()
	})

	// Running check before any fetch is a usable default, not a failure.
	require.NoError(t, runErr)
	assert.Empty(t, output)
}

func TestCheckCommand_InvalidJSONExitsZero(t *testing.T) {
	keyring.MockInit()
	setHCPEnv(t)

	path := filepath.Join(t.TempDir(), "test_secrets.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	cmd := NewCheckCommand(newTestConfig())
	cmd.SetArgs([]string{"--file", path})

	var runErr error
	captureStdout(t, func() {
		runErr = cmd.Execute()
	})
	assert.NoError(t, runErr)
}

func TestCheckCommand_MissingEnvironmentFails(t *testing.T) {
	keyring.MockInit()
	t.Setenv(config.EnvOrganizationID, "")
	t.Setenv(config.EnvProjectID, "")
	t.Setenv(config.EnvAppName, "app")

	cmd := NewCheckCommand(newTestConfig())
	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)

	var cfgErr hcverrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.ElementsMatch(t, []string{config.EnvOrganizationID, config.EnvProjectID}, cfgErr.Missing)
}

func TestCheckCommand_DefaultFileName(t *testing.T) {
	cmd := NewCheckCommand(newTestConfig())
	flag := cmd.Flags().Lookup("file")
	require.NotNil(t, flag)
	assert.Equal(t, "test_secrets.json", flag.DefValue)
	assert.Equal(t, "f", flag.Shorthand)
}
