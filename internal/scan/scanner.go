// Package scan checks secret values in a local secrets file against a
// minimum-length rule.
package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/systmms/hcvss/internal/logging"
)

// MinSecretLength is the threshold at or below which a secret value is
// reported as too short.
const MinSecretLength = 20

// DefaultSecretsFile is the handoff file written by fetch and read by check.
const DefaultSecretsFile = "test_secrets.json"

// missingValue is substituted when a record has no static_version or its
// static_version has no value. The literal is 15 characters, so such records
// are always reported.
const missingValue = "No value found"

// File shapes decoded leniently: pointers distinguish an absent key from an
// empty one, and unknown fields pass through untouched.
type fileStaticVersion struct {
	Value *string `json:"value"`
}

type fileSecret struct {
	StaticVersion *fileStaticVersion `json:"static_version"`
}

type fileDocument struct {
	Secrets []fileSecret `json:"secrets"`
}

// Scanner validates secret lengths from a local secrets file. Findings go to
// out (stdout in the CLI) as they are discovered; diagnostics go to the
// logger.
type Scanner struct {
	threshold int
	out       io.Writer
	logger    *logging.Logger
}

// New creates a scanner with the fixed length threshold.
func New(logger *logging.Logger) *Scanner {
	return &Scanner{threshold: MinSecretLength, out: os.Stdout, logger: logger}
}

// NewWithWriter creates a scanner emitting findings to w. Used by tests.
func NewWithWriter(w io.Writer, logger *logging.Logger) *Scanner {
	return &Scanner{threshold: MinSecretLength, out: w, logger: logger}
}

// Check loads the secrets file at path and returns one message per secret
// value whose length is at or below the threshold, in file order. File
// errors (missing file, invalid JSON, other I/O) are logged and yield an
// empty result: running check before any fetch is not a failure.
//
// Length is measured in Unicode code points, not bytes, so multi-byte
// characters count once.
func (s *Scanner) Check(path string) []string {
	values, ok := s.loadValues(path)
	if !ok {
		return nil
	}

	var messages []string
	for _, value := range values {
		length := utf8.RuneCountInString(value)
		if length <= s.threshold {
			msg := fmt.Sprintf("Secret %s is too short: %d characters", value, length)
			fmt.Fprintln(s.out, msg)
			messages = append(messages, msg)
		}
	}
	return messages
}

// loadValues reads the file and extracts each record's current value,
// substituting missingValue where the nesting is absent. The second return
// is false when the file could not be read or parsed.
func (s *Scanner) loadValues(path string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Error("The file %s does not exist.", path)
		} else {
			s.logger.Error("Failed to read %s: %v", path, err)
		}
		return nil, false
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Error("The file %s does not contain valid JSON.", path)
		return nil, false
	}

	values := make([]string, 0, len(doc.Secrets))
	for _, record := range doc.Secrets {
		if record.StaticVersion == nil || record.StaticVersion.Value == nil {
			values = append(values, missingValue)
			continue
		}
		values = append(values, *record.StaticVersion.Value)
	}
	return values, true
}
