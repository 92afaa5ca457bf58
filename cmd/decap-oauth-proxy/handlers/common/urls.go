package common

import (
	"net/http"
	"strings"
)

// Path suffixes served by the proxy
const (
	AuthorizePath = "/oauth/authorize"
	CallbackPath  = "/callback"
)

// CallbackURL returns the redirect_uri registered with the provider.
// A configured public URL wins; otherwise it is derived from the request
// origin, honouring X-Forwarded-Proto from a fronting proxy.
func CallbackURL(r *http.Request, publicURL string) string {
	if publicURL != "" {
		return strings.TrimSuffix(publicURL, "/") + CallbackPath
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		proto, _, _ := strings.Cut(fwd, ",")
		proto = strings.ToLower(strings.TrimSpace(proto))
		if proto == "http" || proto == "https" {
			scheme = proto
		}
	}

	return scheme + "://" + r.Host + CallbackPath
}
