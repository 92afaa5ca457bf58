package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/wrale/decap-oauth-proxy/internal/delivery"
	"github.com/wrale/decap-oauth-proxy/internal/oauth"
)

// Config holds server configuration loaded from environment variables.
// Client credentials are optional at startup and checked on each request.
type Config struct {
	Port         int    `envconfig:"PORT" default:"8080"`
	ClientID     string `envconfig:"GITHUB_CLIENT_ID"`
	ClientSecret string `envconfig:"GITHUB_CLIENT_SECRET"`
	GitHostname  string `envconfig:"GIT_HOSTNAME" default:"github.com"`
	PublicURL    string `envconfig:"PUBLIC_URL"`
	Scope        string `envconfig:"OAUTH_SCOPE" default:"repo,user"`

	AllowedSites         []string      `envconfig:"ALLOWED_SITES"`
	TokenExchangeTimeout time.Duration `envconfig:"TOKEN_EXCHANGE_TIMEOUT" default:"10s"`

	DeliveryEncodings  []string      `envconfig:"DELIVERY_ENCODINGS" default:"string,object"`
	DeliveryInterval   time.Duration `envconfig:"DELIVERY_INTERVAL" default:"300ms"`
	DeliveryDuration   time.Duration `envconfig:"DELIVERY_DURATION" default:"8s"`
	DeliveryCloseDelay time.Duration `envconfig:"DELIVERY_CLOSE_DELAY" default:"400ms"`
	DeliveryKeepOpen   bool          `envconfig:"DELIVERY_KEEP_OPEN" default:"false"`

	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// loadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment take precedence over the file.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.TokenExchangeTimeout <= 0 {
		return fmt.Errorf("TOKEN_EXCHANGE_TIMEOUT must be positive, got %s", c.TokenExchangeTimeout)
	}
	if c.PublicURL != "" && !strings.HasPrefix(c.PublicURL, "https://") && !strings.HasPrefix(c.PublicURL, "http://") {
		return fmt.Errorf("PUBLIC_URL must start with http:// or https://, got %q", c.PublicURL)
	}
	if _, err := c.deliveryOptions(); err != nil {
		return err
	}
	return nil
}

// providerConfig maps the environment onto the provider client settings
func (c Config) providerConfig() oauth.Config {
	return oauth.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Hostname:     c.GitHostname,
		Scope:        c.Scope,
		Timeout:      c.TokenExchangeTimeout,
	}
}

// deliveryOptions builds and checks the relay page settings
func (c Config) deliveryOptions() (delivery.Options, error) {
	encodings, err := delivery.ParseEncodings(c.DeliveryEncodings)
	if err != nil {
		return delivery.Options{}, fmt.Errorf("DELIVERY_ENCODINGS: %w", err)
	}

	opts := delivery.Options{
		Provider:   delivery.DefaultProvider,
		Encodings:  encodings,
		Interval:   c.DeliveryInterval,
		Duration:   c.DeliveryDuration,
		CloseDelay: c.DeliveryCloseDelay,
		KeepOpen:   c.DeliveryKeepOpen,
	}
	if err := opts.Validate(); err != nil {
		return delivery.Options{}, fmt.Errorf("delivery settings: %w", err)
	}
	return opts, nil
}
