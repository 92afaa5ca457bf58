package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	// DefaultHostname is the public GitHub host
	DefaultHostname = "github.com"

	// DefaultScope grants repository and user read/write
	DefaultScope = "repo,user"

	// DefaultTimeout bounds the token exchange round trip
	DefaultTimeout = 10 * time.Second

	// GitHub endpoint paths
	authorizePath = "/login/oauth/authorize"
	tokenPath     = "/login/oauth/access_token"

	maxTokenResponseSize = 1 << 20
)

var _ Provider = (*GitHubProvider)(nil)

// GitHubProvider implements Provider for github.com and GitHub Enterprise hosts
type GitHubProvider struct {
	client       *http.Client
	clientID     string
	clientSecret string
	scope        string
	endpoint     oauth2.Endpoint
}

// NewGitHubProvider creates a provider client. Missing credentials are not an
// error here; handlers check Configured on every request.
func NewGitHubProvider(cfg Config) *GitHubProvider {
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GitHubProvider{
		client:       &http.Client{Timeout: cfg.Timeout},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		scope:        cfg.Scope,
		endpoint:     endpointFor(cfg),
	}
}

func endpointFor(cfg Config) oauth2.Endpoint {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		host := strings.TrimSpace(cfg.Hostname)
		if host == "" || strings.EqualFold(host, DefaultHostname) {
			return github.Endpoint
		}
		base = "https://" + host
	}

	return oauth2.Endpoint{
		AuthURL:  base + authorizePath,
		TokenURL: base + tokenPath,
	}
}

// Endpoint returns the authorize and token URLs in use
func (p *GitHubProvider) Endpoint() oauth2.Endpoint {
	return p.endpoint
}

// Configured reports whether both client id and secret are set
func (p *GitHubProvider) Configured() bool {
	return p.clientID != "" && p.clientSecret != ""
}

// AuthCodeURL builds the provider authorization URL
func (p *GitHubProvider) AuthCodeURL(redirectURI, state string) string {
	req := AuthorizationRequest{
		ClientID:    p.clientID,
		RedirectURI: redirectURI,
		Scope:       p.scope,
		State:       state,
	}

	cfg := &oauth2.Config{
		ClientID:    req.ClientID,
		Endpoint:    p.endpoint,
		RedirectURL: req.RedirectURI,
		Scopes:      []string{req.Scope},
	}

	// state is sent even when empty
	return cfg.AuthCodeURL(req.State, oauth2.SetAuthURLParam("state", req.State))
}

// Exchange exchanges an authorization code for an access token.
// A single attempt is made; callers treat any error as terminal.
func (p *GitHubProvider) Exchange(ctx context.Context, code, redirectURI string) (*Token, error) {
	if !p.Configured() {
		return nil, ErrMissingCredentials
	}

	payload, err := json.Marshal(TokenExchangeRequest{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Code:         code,
		RedirectURI:  redirectURI,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint.TokenURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	var tokenResp struct {
		AccessToken      string `json:"access_token"`
		TokenType        string `json:"token_type"`
		Scope            string `json:"scope"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTokenResponse, err)
	}

	// GitHub reports most failures with 200 and an error field
	failed := resp.StatusCode < 200 || resp.StatusCode > 299
	if failed || tokenResp.Error != "" || tokenResp.AccessToken == "" {
		return nil, &ExchangeError{
			StatusCode:  resp.StatusCode,
			Code:        tokenResp.Error,
			Description: tokenResp.ErrorDescription,
		}
	}

	return &Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
		Scope:       tokenResp.Scope,
	}, nil
}

// CheckHealth verifies client credentials are configured.
// The provider itself is not contacted.
func (p *GitHubProvider) CheckHealth(ctx context.Context) error {
	if !p.Configured() {
		return ErrMissingCredentials
	}
	return nil
}
