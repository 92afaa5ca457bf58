package test

import (
	"context"
	"net/url"
	"sync"

	"github.com/wrale/decap-oauth-proxy/internal/oauth"
)

// ExchangeCall records one Exchange invocation
type ExchangeCall struct {
	Code        string
	RedirectURI string
}

// MockProvider provides a full implementation of oauth.Provider for testing
type MockProvider struct {
	// Common test functions that can be overridden
	ConfiguredFunc  func() bool
	AuthCodeURLFunc func(redirectURI, state string) string
	ExchangeFunc    func(ctx context.Context, code, redirectURI string) (*oauth.Token, error)
	CheckHealthFunc func(ctx context.Context) error

	mu    sync.Mutex
	calls []ExchangeCall
}

// Ensure MockProvider implements Provider interface
var _ oauth.Provider = (*MockProvider)(nil)

// Configured implements oauth.Provider, defaulting to true
func (m *MockProvider) Configured() bool {
	if m.ConfiguredFunc != nil {
		return m.ConfiguredFunc()
	}
	return true
}

// AuthCodeURL implements oauth.Provider
func (m *MockProvider) AuthCodeURL(redirectURI, state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(redirectURI, state)
	}
	v := url.Values{
		"client_id":    {"test-client"},
		"redirect_uri": {redirectURI},
		"scope":        {"repo,user"},
		"state":        {state},
	}
	return "https://github.com/login/oauth/authorize?" + v.Encode()
}

// Exchange implements oauth.Provider and records the call
func (m *MockProvider) Exchange(ctx context.Context, code, redirectURI string) (*oauth.Token, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ExchangeCall{Code: code, RedirectURI: redirectURI})
	m.mu.Unlock()

	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code, redirectURI)
	}
	return &oauth.Token{AccessToken: "test-token"}, nil
}

// CheckHealth implements oauth.Provider
func (m *MockProvider) CheckHealth(ctx context.Context) error {
	if m.CheckHealthFunc != nil {
		return m.CheckHealthFunc(ctx)
	}
	return nil
}

// ExchangeCalls returns the recorded Exchange invocations
func (m *MockProvider) ExchangeCalls() []ExchangeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExchangeCall(nil), m.calls...)
}
