package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wrale/decap-oauth-proxy/cmd/decap-oauth-proxy/handlers/authorize"
	"github.com/wrale/decap-oauth-proxy/cmd/decap-oauth-proxy/handlers/callback"
	"github.com/wrale/decap-oauth-proxy/cmd/decap-oauth-proxy/handlers/common"
	"github.com/wrale/decap-oauth-proxy/cmd/decap-oauth-proxy/handlers/health"
	"github.com/wrale/decap-oauth-proxy/internal/oauth"
	"github.com/wrale/decap-oauth-proxy/internal/templates"
	"github.com/wrale/decap-oauth-proxy/internal/validation"
)

// suffixRoute serves every path ending in suffix, so the proxy works when
// mounted under a prefix such as a serverless function path
type suffixRoute struct {
	suffix  string
	handler http.Handler
}

type server struct {
	cfg    Config
	router *chi.Mux
	logger *slog.Logger
	routes []suffixRoute
}

func newServer(cfg Config, provider oauth.Provider, logger *slog.Logger) (*server, error) {
	// Load templates
	tmpls, err := templates.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	opts, err := cfg.deliveryOptions()
	if err != nil {
		return nil, err
	}

	sites := validation.NewAllowList(cfg.AllowedSites)
	if !sites.Enabled() {
		logger.Warn("ALLOWED_SITES is empty; tokens will be delivered to any site named in state")
	}

	srv := &server{
		cfg:    cfg,
		router: chi.NewRouter(),
		logger: logger,
	}

	// Set up middleware
	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.RequestLogger(&requestLogFormatter{logger: logger}))
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(middleware.RealIP)
	if cfg.WriteTimeout > 0 {
		srv.router.Use(middleware.Timeout(cfg.WriteTimeout))
	}

	srv.routes = []suffixRoute{
		{
			suffix: common.AuthorizePath,
			handler: authorize.New(authorize.Config{
				Provider:  provider,
				Sites:     sites,
				PublicURL: cfg.PublicURL,
				Logger:    logger,
			}),
		},
		{
			suffix: common.CallbackPath,
			handler: callback.New(callback.Config{
				Provider:  provider,
				Templates: tmpls,
				Sites:     sites,
				Delivery:  opts,
				PublicURL: cfg.PublicURL,
				Logger:    logger,
			}),
		},
	}

	// Register routes
	srv.router.Get("/health", health.New(provider).WithVersion(Version).ServeHTTP)
	srv.router.NotFound(srv.dispatch)
	srv.router.MethodNotAllowed(srv.dispatch)

	return srv, nil
}

// dispatch matches the request path against the suffix routes. The first
// match wins; anything else is a plain-text 404, even when client
// credentials are missing, since only the routes that use them report it.
func (s *server) dispatch(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	for _, route := range s.routes {
		if strings.HasSuffix(path, route.suffix) {
			route.handler.ServeHTTP(w, r)
			return
		}
	}
	common.WriteNotFound(w)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogFormatter writes one structured line per request. Only the path
// is logged; the query may carry an authorization code.
type requestLogFormatter struct {
	logger *slog.Logger
}

func (f *requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{
		logger: f.logger.With(
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		),
	}
}

type requestLogEntry struct {
	logger *slog.Logger
}

func (e *requestLogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	e.logger.Info("request completed",
		"status", status,
		"bytes", bytes,
		"elapsed", elapsed,
	)
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("request panicked",
		"panic", fmt.Sprint(v),
		"stack", string(stack),
	)
}
