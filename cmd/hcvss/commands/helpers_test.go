package commands

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systmms/hcvss/internal/config"
	"github.com/systmms/hcvss/internal/logging"
)

// captureStdout redirects os.Stdout while fn runs and returns what was
// written. Scan findings go straight to the process stdout, so command tests
// capture it the same way a user would see it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func newTestConfig() *config.Config {
	return &config.Config{Logger: logging.New(false, true)}
}

func setHCPEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvOrganizationID, "org-123")
	t.Setenv(config.EnvProjectID, "proj-456")
	t.Setenv(config.EnvAppName, "my-app")
}
