// Package callback exchanges the provider's authorization code and relays
// the outcome to the CMS window that opened the popup
package callback

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wrale/decap-oauth-proxy/cmd/decap-oauth-proxy/handlers/common"
	"github.com/wrale/decap-oauth-proxy/internal/delivery"
	"github.com/wrale/decap-oauth-proxy/internal/logging"
	"github.com/wrale/decap-oauth-proxy/internal/oauth"
	"github.com/wrale/decap-oauth-proxy/internal/templates"
	"github.com/wrale/decap-oauth-proxy/internal/validation"
)

// Handler processes the provider redirect
type Handler struct {
	provider  oauth.Provider
	templates *templates.Templates
	sites     *validation.AllowList
	delivery  delivery.Options
	publicURL string
	logger    *slog.Logger
}

// Config contains handler configuration
type Config struct {
	Provider  oauth.Provider
	Templates *templates.Templates
	Sites     *validation.AllowList
	Delivery  delivery.Options
	PublicURL string
	Logger    *slog.Logger
}

// New creates a new callback handler
func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		provider:  cfg.Provider,
		templates: cfg.Templates,
		sites:     cfg.Sites,
		delivery:  cfg.Delivery,
		publicURL: cfg.PublicURL,
		logger:    logger.With("handler", "callback"),
	}
}

// ServeHTTP handles GET /callback?code=<code>&state=<state>.
// Every outcome, including failures, is answered with the 200 relay page.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.provider.Configured() {
		h.logger.Error("client credentials are not configured")
		common.WriteMissingConfig(w)
		return
	}

	query := r.URL.Query()
	state := query.Get("state")

	site, allowed := h.resolveSite(state)
	outcome := h.outcome(r, query.Get("code"), allowed)

	attrs := []any{"outcome", outcome.Type}
	if site != nil {
		attrs = append(attrs, "site", site.Host)
	}
	if !outcome.OK() {
		attrs = append(attrs, "reason", outcome.Payload)
	}
	h.logger.Info("authorization callback completed", attrs...)

	h.render(w, delivery.NewPlan(h.delivery, outcome, site))
}

// resolveSite interprets state as the admin site. It returns the site only
// when it is safe to use in outbound URLs, and whether the flow may proceed.
func (h *Handler) resolveSite(state string) (*validation.Site, bool) {
	if state == "" {
		return nil, !h.sites.Enabled()
	}

	site, err := validation.ParseSite(state)
	if err != nil {
		h.logger.Warn("state is not a usable site", "error", err)
		return nil, !h.sites.Enabled()
	}

	if !h.sites.Allows(site) {
		h.logger.Warn("site rejected by allow-list", "site", site.Host)
		return nil, false
	}

	return &site, true
}

func (h *Handler) outcome(r *http.Request, code string, allowed bool) delivery.Outcome {
	if code == "" {
		if providerErr := r.URL.Query().Get("error"); providerErr != "" {
			h.logger.Info("provider redirected without a code", "error", providerErr)
		}
		return delivery.Failure(delivery.ReasonMissingCode)
	}

	if !allowed {
		return delivery.Failure(delivery.ReasonSiteNotAllowed)
	}

	token, err := h.exchange(r.Context(), code, common.CallbackURL(r, h.publicURL))
	if err != nil {
		return delivery.Failure(reasonFor(err))
	}

	return delivery.Success(token.AccessToken)
}

func (h *Handler) exchange(ctx context.Context, code, redirectURI string) (*oauth.Token, error) {
	token, err := h.provider.Exchange(ctx, code, redirectURI)
	if err != nil {
		h.logger.Warn("token exchange failed", "error", err)
		return nil, err
	}
	return token, nil
}

// reasonFor maps an exchange error to the reason shown to the CMS.
// Transport and internal errors never leak their text.
func reasonFor(err error) string {
	if errors.Is(err, oauth.ErrBadTokenResponse) {
		return delivery.ReasonBadTokenResponse
	}

	var exErr *oauth.ExchangeError
	if errors.As(err, &exErr) && exErr.Reason() != "" {
		return exErr.Reason()
	}

	return delivery.ReasonUnknownError
}

func (h *Handler) render(w http.ResponseWriter, plan delivery.Plan) {
	sw := templates.NewSafeWriter(w)
	common.SetNoStore(sw)

	if err := h.templates.RenderRelay(sw, plan); err != nil {
		h.logger.Error("failed to render relay page", "error", err)
		if !sw.Written() {
			common.WriteText(w, http.StatusInternalServerError, "error rendering page")
		}
	}
}
