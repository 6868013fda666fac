package hcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	hcverrors "github.com/systmms/hcvss/internal/errors"
	"github.com/systmms/hcvss/internal/logging"
	"github.com/systmms/hcvss/internal/secure"
)

const (
	// DefaultTokenEndpoint is the HCP identity provider's OAuth2 endpoint.
	DefaultTokenEndpoint = "https://auth.idp.hashicorp.com/oauth2/token"

	tokenAudience = "https://api.hashicorp.cloud"

	defaultTimeout = 30 * time.Second
)

// TokenSource issues bearer tokens for the HCP API.
type TokenSource interface {
	Issue(ctx context.Context) (string, error)
}

// TokenIssuer exchanges client credentials for a bearer token. One attempt
// per call, no retry, no caching: every fetch gets a fresh token.
type TokenIssuer struct {
	httpClient   *http.Client
	endpoint     string
	clientID     string
	clientSecret *secure.Buffer
	logger       *logging.Logger
}

// NewTokenIssuer creates a token issuer against the HCP identity provider.
// The endpoint is overridable for tests.
func NewTokenIssuer(endpoint, clientID string, clientSecret *secure.Buffer, logger *logging.Logger) *TokenIssuer {
	if endpoint == "" {
		endpoint = DefaultTokenEndpoint
	}
	return &TokenIssuer{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		endpoint:     endpoint,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger,
	}
}

// Issue performs the client-credentials exchange and returns the bearer
// token. Transport failures, non-2xx statuses, undecodable bodies, and a
// response without an access token are all distinct TokenErrors.
func (i *TokenIssuer) Issue(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("client_id", i.clientID)
	form.Set("grant_type", "client_credentials")
	form.Set("audience", tokenAudience)

	if i.clientSecret != nil {
		if err := i.clientSecret.With(func(value []byte) error {
			form.Set("client_secret", string(value))
			return nil
		}); err != nil {
			return "", hcverrors.TokenError{Op: "request", Message: "failed to read client secret", Err: err}
		}
	} else {
		form.Set("client_secret", "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", hcverrors.TokenError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	i.logger.Debug("requesting token for client %s", logging.Secret(i.clientID))

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", hcverrors.TokenError{Op: "request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", hcverrors.TokenError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", hcverrors.TokenError{Op: "decode", Message: "malformed token response", Err: err}
	}

	if tokenResp.AccessToken == "" {
		return "", hcverrors.TokenError{Op: "no_token", Message: "no access token in response"}
	}

	return tokenResp.AccessToken, nil
}
