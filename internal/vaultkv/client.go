// Package vaultkv is a passthrough client for a Vault KV v2 secrets engine.
// Every operation issues one HTTP call with the X-Vault-Token header and
// returns the decoded response body; there is no handling beyond surfacing
// HTTP failures.
package vaultkv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config holds the connection settings for a Vault server.
type Config struct {
	Address   string // e.g. https://vault.example.com:8200
	Token     string // sent as X-Vault-Token
	Namespace string // optional, sent as X-Vault-Namespace
	Timeout   time.Duration
}

// APIError is a non-success response from Vault.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vault returned status %d: %s", e.StatusCode, e.Body)
}

// EngineConfig are the KV v2 engine settings.
type EngineConfig struct {
	MaxVersions        int    `json:"max_versions"`
	CASRequired        bool   `json:"cas_required"`
	DeleteVersionAfter string `json:"delete_version_after"`
}

// MetadataParams are the per-secret metadata settings.
type MetadataParams struct {
	MaxVersions        int               `json:"max_versions"`
	CASRequired        bool              `json:"cas_required"`
	DeleteVersionAfter string            `json:"delete_version_after"`
	CustomMetadata     map[string]string `json:"custom_metadata,omitempty"`
}

// Client issues KV v2 requests against one Vault server.
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a KV client. The token is passed through on every call;
// no authentication flow runs here.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
	}
}

// ConfigureEngine writes the engine configuration for a mount.
func (c *Client) ConfigureEngine(ctx context.Context, mount string, config EngineConfig) error {
	_, err := c.do(ctx, http.MethodPost, c.path(mount, "config", ""), config, "")
	return err
}

// ReadEngineConfig reads the engine configuration for a mount.
func (c *Client) ReadEngineConfig(ctx context.Context, mount string) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodGet, c.path(mount, "config", ""), nil, "")
}

// ReadSecretVersion reads one version of a secret. Version 0 means the
// current version.
func (c *Client) ReadSecretVersion(ctx context.Context, mount, secretPath string, version int) (map[string]interface{}, error) {
	p := c.path(mount, "data", secretPath)
	if version != 0 {
		p += "?version=" + strconv.Itoa(version)
	}
	return c.do(ctx, http.MethodGet, p, nil, "")
}

// CreateSecret writes a new secret version. A non-nil cas value guards
// against lost updates: the write only succeeds if the current version
// matches.
func (c *Client) CreateSecret(ctx context.Context, mount, secretPath string, data map[string]interface{}, cas *int) (map[string]interface{}, error) {
	payload := map[string]interface{}{"data": data}
	if cas != nil {
		payload["options"] = map[string]interface{}{"cas": *cas}
	}
	return c.do(ctx, http.MethodPost, c.path(mount, "data", secretPath), payload, "")
}

// UpdateSecret writes a new version of an existing secret.
func (c *Client) UpdateSecret(ctx context.Context, mount, secretPath string, data map[string]interface{}) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodPost, c.path(mount, "data", secretPath),
		map[string]interface{}{"data": data}, "")
}

// PatchSecret merges the given fields into the current secret version.
func (c *Client) PatchSecret(ctx context.Context, mount, secretPath string, data map[string]interface{}) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodPatch, c.path(mount, "data", secretPath),
		map[string]interface{}{"data": data}, "application/merge-patch+json")
}

// ReadSubkeys reads the structure of a secret without its values.
func (c *Client) ReadSubkeys(ctx context.Context, mount, secretPath string, version, depth int) (map[string]interface{}, error) {
	p := c.path(mount, "subkeys", secretPath)
	var params []string
	if version != 0 {
		params = append(params, "version="+strconv.Itoa(version))
	}
	if depth != 0 {
		params = append(params, "depth="+strconv.Itoa(depth))
	}
	if len(params) > 0 {
		p += "?" + strings.Join(params, "&")
	}
	return c.do(ctx, http.MethodGet, p, nil, "")
}

// ListSecrets lists secret names under a metadata path.
func (c *Client) ListSecrets(ctx context.Context, mount, secretPath string) (map[string]interface{}, error) {
	return c.do(ctx, "LIST", c.path(mount, "metadata", secretPath), nil, "")
}

// ReadMetadata reads a secret's metadata and version history.
func (c *Client) ReadMetadata(ctx context.Context, mount, secretPath string) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodGet, c.path(mount, "metadata", secretPath), nil, "")
}

// UpdateMetadata replaces a secret's metadata settings.
func (c *Client) UpdateMetadata(ctx context.Context, mount, secretPath string, params MetadataParams) error {
	_, err := c.do(ctx, http.MethodPost, c.path(mount, "metadata", secretPath), params, "")
	return err
}

// PatchMetadata merges the given settings into a secret's metadata.
func (c *Client) PatchMetadata(ctx context.Context, mount, secretPath string, params MetadataParams) error {
	_, err := c.do(ctx, http.MethodPatch, c.path(mount, "metadata", secretPath),
		params, "application/merge-patch+json")
	return err
}

// DeleteMetadata permanently deletes a secret's metadata and all versions.
func (c *Client) DeleteMetadata(ctx context.Context, mount, secretPath string) error {
	_, err := c.do(ctx, http.MethodDelete, c.path(mount, "metadata", secretPath), nil, "")
	return err
}

// DeleteLatestVersion soft-deletes the current secret version.
func (c *Client) DeleteLatestVersion(ctx context.Context, mount, secretPath string) error {
	_, err := c.do(ctx, http.MethodDelete, c.path(mount, "data", secretPath), nil, "")
	return err
}

// DeleteVersions soft-deletes the given secret versions.
func (c *Client) DeleteVersions(ctx context.Context, mount, secretPath string, versions []int) error {
	_, err := c.do(ctx, http.MethodPost, c.path(mount, "delete", secretPath),
		map[string]interface{}{"versions": versions}, "")
	return err
}

// UndeleteVersions restores soft-deleted secret versions.
func (c *Client) UndeleteVersions(ctx context.Context, mount, secretPath string, versions []int) error {
	_, err := c.do(ctx, http.MethodPost, c.path(mount, "undelete", secretPath),
		map[string]interface{}{"versions": versions}, "")
	return err
}

// DestroyVersions permanently removes the data of the given versions.
func (c *Client) DestroyVersions(ctx context.Context, mount, secretPath string, versions []int) error {
	_, err := c.do(ctx, http.MethodPost, c.path(mount, "destroy", secretPath),
		map[string]interface{}{"versions": versions}, "")
	return err
}

// path builds /v1/{mount}/{segment}/{secretPath} against the server address.
func (c *Client) path(mount, segment, secretPath string) string {
	p := strings.TrimSuffix(c.config.Address, "/") + "/v1/" +
		strings.Trim(mount, "/") + "/" + segment
	if secretPath != "" {
		p += "/" + strings.Trim(secretPath, "/")
	}
	return p
}

// do issues one request and decodes the JSON body, if any. Non-2xx statuses
// surface as *APIError with the body attached.
func (c *Client) do(ctx context.Context, method, url string, body interface{}, contentType string) (map[string]interface{}, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Vault-Token", c.config.Token)
	if c.config.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", c.config.Namespace)
	}
	if body != nil {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return decoded, nil
}
