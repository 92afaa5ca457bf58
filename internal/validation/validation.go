// Package validation interprets the OAuth state value as the admin site that
// started the flow and checks it against the configured allow-list
package validation

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// MaxHostLength is the longest hostname accepted as a site
const MaxHostLength = 253

// DefaultScheme is used when the state carries a bare hostname
const DefaultScheme = "https"

var labelRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// ValidationError represents a site validation error
type ValidationError struct {
	Site    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid site %q: %s", e.Site, e.Message)
}

// Site is the admin page origin recovered from the state value
type Site struct {
	Scheme string
	Host   string // lower-case hostname, with port when one was given
}

// Hostname returns the host without any port
func (s Site) Hostname() string {
	return stripPort(s.Host)
}

// Origin returns the site as a browser origin, e.g. https://example.com
func (s Site) Origin() string {
	return s.Scheme + "://" + s.Host
}

// ParseSite accepts either a bare hostname ("example.com", "localhost:1313",
// "[::1]:1313") or an origin-style URL ("https://example.com/admin/") and
// reduces it to a Site.
// Anything that is not a plain host is rejected so it can never be used to
// build an outbound URL.
func ParseSite(state string) (Site, error) {
	raw := strings.TrimSpace(state)
	if raw == "" {
		return Site{}, &ValidationError{Site: state, Message: "site is empty"}
	}

	site := Site{Scheme: DefaultScheme}
	host := raw

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return Site{}, &ValidationError{Site: state, Message: "not a valid URL"}
		}
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return Site{}, &ValidationError{Site: state, Message: "scheme must be http or https"}
		}
		if u.User != nil {
			return Site{}, &ValidationError{Site: state, Message: "credentials are not allowed"}
		}
		site.Scheme = scheme
		host = u.Host
	} else if i := strings.IndexAny(raw, "/?#"); i >= 0 {
		host = raw[:i]
	}

	host = strings.ToLower(host)
	if err := validateHost(host); err != nil {
		return Site{}, &ValidationError{Site: state, Message: err.Error()}
	}

	site.Host = host
	return site, nil
}

func validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("host is empty")
	}

	name := host
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		name = host[1 : len(host)-1]
	} else if strings.Contains(host, ":") {
		h, port, err := net.SplitHostPort(host)
		if err != nil {
			return fmt.Errorf("malformed host and port")
		}
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("port must be between 1 and 65535")
		}
		name = h
	}

	// IPv6 literals must be bracketed, and brackets hold only IPv6 literals
	if strings.HasPrefix(host, "[") || strings.Contains(name, ":") {
		if !strings.HasPrefix(host, "[") || !strings.Contains(name, ":") || net.ParseIP(name) == nil {
			return fmt.Errorf("IPv6 address %q is not valid", name)
		}
		return nil
	}

	if len(name) > MaxHostLength {
		return fmt.Errorf("hostname longer than %d characters", MaxHostLength)
	}

	for _, label := range strings.Split(name, ".") {
		if !labelRegex.MatchString(label) {
			return fmt.Errorf("hostname label %q is not valid", label)
		}
	}

	return nil
}

// AllowList restricts which sites may receive delivery.
// Patterns are exact hostnames or "*.example.com" wildcards matching any
// subdomain (but not the apex). Ports are ignored.
type AllowList struct {
	patterns []string
}

// NewAllowList builds an allow-list, dropping blank entries
func NewAllowList(patterns []string) *AllowList {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		cleaned = append(cleaned, stripPort(p))
	}
	return &AllowList{patterns: cleaned}
}

// Enabled reports whether any pattern was configured
func (a *AllowList) Enabled() bool {
	return a != nil && len(a.patterns) > 0
}

// Allows reports whether site may be used. An empty allow-list allows every site.
func (a *AllowList) Allows(site Site) bool {
	if !a.Enabled() {
		return true
	}
	return matchHost(site.Hostname(), a.patterns)
}

func matchHost(host string, patterns []string) bool {
	host = strings.ToLower(host)
	for _, p := range patterns {
		if p == host {
			return true
		}
		if strings.HasPrefix(p, "*.") {
			suffix := p[1:] // ".example.com"
			if strings.HasSuffix(host, suffix) && host != suffix[1:] {
				return true
			}
		}
	}
	return false
}

// stripPort removes any port and the brackets around an IPv6 literal
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
