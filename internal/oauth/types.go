// Package oauth talks to the git-hosting provider: it builds the authorization
// redirect and exchanges authorization codes for access tokens
package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBadTokenResponse indicates the token endpoint returned a body that is not JSON
	ErrBadTokenResponse = errors.New("token response is not valid JSON")

	// ErrMissingCredentials indicates the client id or secret is not configured
	ErrMissingCredentials = errors.New("oauth client id and secret are required")
)

// ExchangeError is returned when the provider answers but does not issue a token
type ExchangeError struct {
	StatusCode  int
	Code        string // provider "error" field
	Description string // provider "error_description" field
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed (status %d): %s: %s", e.StatusCode, e.Code, e.Description)
}

// Reason returns the most descriptive text the provider gave, or "" when it gave none
func (e *ExchangeError) Reason() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Code
}

// Token is an access token issued by the provider
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Scope       string `json:"scope,omitempty"`
}

// AuthorizationRequest holds the parameters sent to the provider's authorize endpoint.
// State is opaque and echoed back unmodified by the provider.
type AuthorizationRequest struct {
	ClientID    string
	RedirectURI string
	Scope       string
	State       string
}

// TokenExchangeRequest is the JSON body posted to the provider's token endpoint
type TokenExchangeRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
}

// Provider defines the operations the HTTP handlers need from the provider
type Provider interface {
	// Configured reports whether client credentials are present
	Configured() bool

	// AuthCodeURL builds the URL the popup is redirected to
	AuthCodeURL(redirectURI, state string) string

	// Exchange trades an authorization code for an access token
	Exchange(ctx context.Context, code, redirectURI string) (*Token, error)

	// CheckHealth verifies the provider client is usable
	CheckHealth(ctx context.Context) error
}

// Config holds provider client configuration
type Config struct {
	ClientID     string
	ClientSecret string
	Hostname     string // defaults to github.com
	BaseURL      string // used instead of https://<Hostname> when set
	Scope        string // defaults to repo,user
	Timeout      time.Duration
}
