// Package integration exercises a running proxy over HTTP
package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

// Configuration for integration tests
const (
	// ProxyEndpointEnv names the base URL of the proxy under test
	ProxyEndpointEnv = "PROXY_URL"

	// Timeouts and delays
	ServiceTimeout = 60 * time.Second
	RetryInterval  = 2 * time.Second
)

// TestSuite provides shared functionality for integration tests
type TestSuite struct {
	T        *testing.T
	Client   *http.Client
	Ctx      context.Context
	Endpoint string
}

// NewSuite creates a new test suite with timeout. The test is skipped unless
// PROXY_URL points at a running proxy.
func NewSuite(t *testing.T) *TestSuite {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	endpoint := strings.TrimSuffix(os.Getenv(ProxyEndpointEnv), "/")
	if endpoint == "" {
		t.Skipf("Skipping integration test: %s is not set", ProxyEndpointEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ServiceTimeout)
	t.Cleanup(cancel)

	return &TestSuite{
		T: t,
		Client: &http.Client{
			Timeout: 10 * time.Second,
			// Redirects are asserted on, never followed
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		Ctx:      ctx,
		Endpoint: endpoint,
	}
}

// WaitForService waits for the proxy health endpoint to answer.
// Any status counts: an unconfigured proxy reports 503 but is still up.
func (s *TestSuite) WaitForService() error {
	ticker := time.NewTicker(RetryInterval)
	defer ticker.Stop()

	for {
		resp, err := s.Get("/health", nil)
		if err == nil {
			resp.Body.Close()
			return nil
		}

		select {
		case <-s.Ctx.Done():
			return fmt.Errorf("timeout waiting for proxy: %w", err)
		case <-ticker.C:
			continue
		}
	}
}

// Get issues a GET against the proxy
func (s *TestSuite) Get(path string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(s.Ctx, http.MethodGet, s.BuildURL(path, params), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return s.Client.Do(req)
}

// ReadBody reads and closes a response body
func (s *TestSuite) ReadBody(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(body), nil
}

// BuildURL creates a full URL for an endpoint
func (s *TestSuite) BuildURL(path string, params url.Values) string {
	if len(params) == 0 {
		return s.Endpoint + path
	}
	return s.Endpoint + path + "?" + params.Encode()
}
