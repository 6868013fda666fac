// Package errors defines the error types surfaced by hcvss commands.
//
// Fetch-path errors (configuration, token issuance, secrets fetch) are never
// caught internally: they travel to main, which prints them and exits
// non-zero. Check-path errors are handled inside the scanner and degrade to
// an empty result.
package errors

import (
	"fmt"
	"strings"
)

// ConfigError reports missing required environment variables. It is raised
// by the configuration loader before any network activity and always names
// every missing variable, not just the first.
type ConfigError struct {
	Missing []string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s",
		strings.Join(e.Missing, ", "))
}

// TokenError reports a failed token exchange with the identity provider.
type TokenError struct {
	Op         string // "request", "status", "decode", "no_token"
	StatusCode int
	Message    string
	Err        error
}

func (e TokenError) Error() string {
	msg := "token exchange failed"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e TokenError) Unwrap() error { return e.Err }

// FetchError reports a failed secrets fetch. Decode distinguishes a response
// body that was not valid JSON from transport and status failures.
type FetchError struct {
	Op         string // "request", "status", "decode", "write"
	StatusCode int
	Message    string
	Err        error
}

func (e FetchError) Error() string {
	msg := "secrets fetch failed"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e FetchError) Unwrap() error { return e.Err }

// UserError is an error with actionable guidance for the operator.
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error { return e.Err }
