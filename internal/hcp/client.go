// Package hcp talks to the HCP Vault Secrets HTTP API: an OAuth2
// client-credentials token exchange followed by the secrets:open call.
package hcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	hcverrors "github.com/systmms/hcvss/internal/errors"
	"github.com/systmms/hcvss/internal/logging"
)

// Client fetches opened secrets for one HCP Vault Secrets application.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	logger     *logging.Logger
}

// NewClient creates a fetch client for the given application base URL.
func NewClient(baseURL string, tokens TokenSource, logger *logging.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		logger:     logger,
	}
}

// OpenSecrets obtains a fresh token, calls secrets:open, writes the raw
// response body verbatim to filePath (overwriting), and returns the decoded
// document. A body that is not valid JSON is a decode error, distinct from
// transport and status failures; either aborts the fetch with no partial
// result.
func (c *Client) OpenSecrets(ctx context.Context, filePath string) (*SecretsDocument, error) {
	token, err := c.tokens.Issue(ctx)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/secrets:open"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, hcverrors.FetchError{Op: "request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	c.logger.Debug("fetching %s", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, hcverrors.FetchError{Op: "request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, hcverrors.FetchError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, hcverrors.FetchError{Op: "request", Message: "failed to read response body", Err: err}
	}

	var doc SecretsDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, hcverrors.FetchError{Op: "decode", Message: "response is not valid JSON", Err: err}
	}

	// The file is the handoff point between fetch and check; check reads
	// exactly what the API returned.
	if err := os.WriteFile(filePath, body, 0o600); err != nil {
		return nil, hcverrors.FetchError{Op: "write", Message: "failed to write " + filePath, Err: err}
	}

	c.logger.Info("fetched %d secrets to %s", len(doc.Secrets), filePath)
	return &doc, nil
}
