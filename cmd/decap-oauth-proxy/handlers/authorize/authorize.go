// Package authorize starts the popup flow by redirecting to the provider
package authorize

import (
	"log/slog"
	"net/http"

	"github.com/wrale/decap-oauth-proxy/cmd/decap-oauth-proxy/handlers/common"
	"github.com/wrale/decap-oauth-proxy/internal/logging"
	"github.com/wrale/decap-oauth-proxy/internal/oauth"
	"github.com/wrale/decap-oauth-proxy/internal/validation"
)

// Handler redirects the popup to the provider's authorization page
type Handler struct {
	provider  oauth.Provider
	sites     *validation.AllowList
	publicURL string
	logger    *slog.Logger
}

// Config contains handler configuration options
type Config struct {
	Provider  oauth.Provider
	Sites     *validation.AllowList
	PublicURL string
	Logger    *slog.Logger
}

// New creates a new authorize handler
func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		provider:  cfg.Provider,
		sites:     cfg.Sites,
		publicURL: cfg.PublicURL,
		logger:    logger.With("handler", "authorize"),
	}
}

// ServeHTTP handles GET /oauth/authorize?site_id=<site>.
// site_id is passed through as the OAuth state without modification.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.provider.Configured() {
		h.logger.Error("client credentials are not configured")
		common.WriteMissingConfig(w)
		return
	}

	siteID := r.URL.Query().Get("site_id")

	// The callback enforces the allow-list; here it is only reported
	if h.sites.Enabled() {
		site, err := validation.ParseSite(siteID)
		if err != nil || !h.sites.Allows(site) {
			h.logger.Warn("authorization started for a site outside the allow-list", "site_id", siteID)
		}
	}

	location := h.provider.AuthCodeURL(common.CallbackURL(r, h.publicURL), siteID)

	h.logger.Debug("redirecting to provider", "site_id", siteID)

	common.SetNoStore(w)
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusFound)
}
