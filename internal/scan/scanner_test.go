package scan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/hcvss/internal/logging"
)

func writeSecretsFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_secrets.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func newTestScanner(out, diag *bytes.Buffer) *Scanner {
	return NewWithWriter(out, logging.NewWithWriter(diag, false, true))
}

func TestScanner_Check_FlagsShortSecrets(t *testing.T) {
	path := writeSecretsFile(t, `{"secrets": [
		{"static_version": {"value": "short"}},
		{"static_version": {"value": "this_is_a_long_enough_secret_value"}}
	]}`)

	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(path)

	require.Len(t, messages, 1)
	assert.Equal(t, "Secret short is too short: 5 characters", messages[0])
	// Findings are written to the output stream as they are discovered.
	assert.Equal(t, "Secret short is too short: 5 characters\n", out.String())
}

func TestScanner_Check_ThresholdBoundary(t *testing.T) {
	path := writeSecretsFile(t, `{"secrets": [
		{"static_version": {"value": "exactly_20_chars_ok_"}},
		{"static_version": {"value": "twenty_one_chars_long"}}
	]}`)

	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(path)

	// 20 characters is at the threshold and flagged; 21 is not.
	require.Len(t, messages, 1)
	assert.Equal(t, "Secret exactly_20_chars_ok_ is too short: 20 characters", messages[0])
}

func TestScanner_Check_MissingStaticVersionUsesDefault(t *testing.T) {
	path := writeSecretsFile(t, `{"secrets": [{"name": "ORPHAN"}]}`)

	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(path)

	// The default literal is 15 characters, always at or below the
	// threshold, so the record is always reported.
	require.Len(t, messages, 1)
	assert.Equal(t, "Secret No value found is too short: 15 characters", messages[0])
}

func TestScanner_Check_MissingValueKeyUsesDefault(t *testing.T) {
	path := writeSecretsFile(t, `{"secrets": [{"static_version": {"version": 3}}]}`)

	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(path)

	require.Len(t, messages, 1)
	assert.Equal(t, "Secret No value found is too short: 15 characters", messages[0])
}

func TestScanner_Check_MultiByteValuesCountRunes(t *testing.T) {
	// 23 code points, 69 bytes: not flagged because length is measured in
	// code points.
	path := writeSecretsFile(t, `{"secrets": [
		{"static_version": {"value": "ありがとうございましたありがとうございました森"}},
		{"static_version": {"value": "パスワード"}}
	]}`)

	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(path)

	require.Len(t, messages, 1)
	assert.Equal(t, "Secret パスワード is too short: 5 characters", messages[0])
}

func TestScanner_Check_EmptySecretsArray(t *testing.T) {
	path := writeSecretsFile(t, `{"secrets": []}`)

	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(path)

	assert.Empty(t, messages)
	assert.Empty(t, out.String())
}

func TestScanner_Check_MissingSecretsKey(t *testing.T) {
	path := writeSecretsFile(t, `{"unrelated": true}`)

	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(path)

	assert.Empty(t, messages)
}

func TestScanner_Check_NonexistentFile(t *testing.T) {
	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(filepath.Join(t.TempDir(), "nope.json"))

	assert.Empty(t, messages)
	assert.Contains(t, diag.String(), "does not exist")
	assert.Empty(t, out.String())
}

func TestScanner_Check_InvalidJSON(t *testing.T) {
	path := writeSecretsFile(t, "{not json")

	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(path)

	assert.Empty(t, messages)
	assert.Contains(t, diag.String(), "does not contain valid JSON")
}

func TestScanner_Check_PreservesFileOrder(t *testing.T) {
	path := writeSecretsFile(t, `{"secrets": [
		{"static_version": {"value": "bbb"}},
		{"static_version": {"value": "aaa"}},
		{"static_version": {"value": "ccc"}}
	]}`)

	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(path)

	require.Len(t, messages, 3)
	assert.Equal(t, "Secret bbb is too short: 3 characters", messages[0])
	assert.Equal(t, "Secret aaa is too short: 3 characters", messages[1])
	assert.Equal(t, "Secret ccc is too short: 3 characters", messages[2])
}

func TestScanner_Check_EmptyStringValue(t *testing.T) {
	path := writeSecretsFile(t, `{"secrets": [{"static_version": {"value": ""}}]}`)

	var out, diag bytes.Buffer
	messages := newTestScanner(&out, &diag).Check(path)

	require.Len(t, messages, 1)
	assert.Equal(t, "Secret  is too short: 0 characters", messages[0])
}
