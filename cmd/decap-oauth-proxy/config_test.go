package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wrale/decap-oauth-proxy/internal/delivery"
	"github.com/wrale/decap-oauth-proxy/internal/oauth"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GITHUB_CLIENT_ID", "client-123")
	t.Setenv("GITHUB_CLIENT_SECRET", "secret-456")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	want := Config{
		Port:                 8080,
		ClientID:             "client-123",
		ClientSecret:         "secret-456",
		GitHostname:          "github.com",
		Scope:                "repo,user",
		TokenExchangeTimeout: 10 * time.Second,
		DeliveryEncodings:    []string{"string", "object"},
		DeliveryInterval:     300 * time.Millisecond,
		DeliveryDuration:     8 * time.Second,
		DeliveryCloseDelay:   400 * time.Millisecond,
		ReadHeaderTimeout:    5 * time.Second,
		ReadTimeout:          10 * time.Second,
		WriteTimeout:         30 * time.Second,
		IdleTimeout:          60 * time.Second,
		LogLevel:             "info",
		LogFormat:            "text",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("loadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GIT_HOSTNAME", "git.example.com")
	t.Setenv("ALLOWED_SITES", "example.com,*.example.org")
	t.Setenv("TOKEN_EXCHANGE_TIMEOUT", "3s")
	t.Setenv("DELIVERY_ENCODINGS", "object")
	t.Setenv("DELIVERY_KEEP_OPEN", "true")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if diff := cmp.Diff([]string{"example.com", "*.example.org"}, cfg.AllowedSites); diff != "" {
		t.Errorf("AllowedSites mismatch (-want +got):\n%s", diff)
	}

	pc := cfg.providerConfig()
	if pc.Hostname != "git.example.com" || pc.Timeout != 3*time.Second {
		t.Errorf("providerConfig() = %+v", pc)
	}
	if got := oauth.NewGitHubProvider(pc).Endpoint().TokenURL; got != "https://git.example.com/login/oauth/access_token" {
		t.Errorf("TokenURL = %q", got)
	}

	opts, err := cfg.deliveryOptions()
	if err != nil {
		t.Fatalf("deliveryOptions() error = %v", err)
	}
	if diff := cmp.Diff([]delivery.Encoding{delivery.EncodingObject}, opts.Encodings); diff != "" {
		t.Errorf("Encodings mismatch (-want +got):\n%s", diff)
	}
	if !opts.KeepOpen {
		t.Error("KeepOpen = false, want true")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
		wantIs  error
	}{
		{
			name:    "bad duration",
			env:     map[string]string{"DELIVERY_INTERVAL": "soon"},
			wantErr: "DELIVERY_INTERVAL",
		},
		{
			name:   "unknown encoding",
			env:    map[string]string{"DELIVERY_ENCODINGS": "string,xml"},
			wantIs: delivery.ErrUnknownEncoding,
		},
		{
			name:    "zero interval",
			env:     map[string]string{"DELIVERY_INTERVAL": "0s"},
			wantErr: "delivery interval must be positive",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"PORT": "70000"},
			wantErr: "PORT must be between",
		},
		{
			name:    "zero exchange timeout",
			env:     map[string]string{"TOKEN_EXCHANGE_TIMEOUT": "0s"},
			wantErr: "TOKEN_EXCHANGE_TIMEOUT must be positive",
		},
		{
			name:    "public url without scheme",
			env:     map[string]string{"PUBLIC_URL": "auth.example.net"},
			wantErr: "PUBLIC_URL must start with",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := loadConfig()
			if err == nil {
				t.Fatal("loadConfig() error = nil, want error")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("loadConfig() error = %v, want containing %q", err, tt.wantErr)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("loadConfig() error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}
