package delivery

import (
	"fmt"
	"net/url"

	"github.com/wrale/decap-oauth-proxy/internal/validation"
)

// AnyOrigin is the postMessage target used when no site is known
const AnyOrigin = "*"

// fallbackPath is where the CMS admin app picks up a token from the URL
const fallbackPath = "/admin/#/oauth"

// ObjectMessage is the structured message form
type ObjectMessage struct {
	Provider string `json:"provider"`
	Type     string `json:"type"`
	Token    string `json:"token"`
}

// StringMessage returns the delimited message form
func StringMessage(provider string, o Outcome) string {
	return fmt.Sprintf("authorization:%s:%s:%s", provider, o.Type, o.Payload)
}

// Plan is everything the relay page needs to deliver one outcome.
// Values are raw; escaping is left to the template engine.
type Plan struct {
	Outcome      Outcome
	Display      string // visible outcome line
	Messages     []any  // one entry per configured encoding, posted in order
	TargetOrigin string
	FallbackURL  string // empty when there is nowhere safe to redirect
	IntervalMS   int64
	DurationMS   int64
	CloseDelayMS int64
	KeepOpen     bool
}

// NewPlan applies every configured encoding to the same outcome.
// site is the admin page recovered from state, or nil when it is unknown or
// was rejected.
func NewPlan(opts Options, outcome Outcome, site *validation.Site) Plan {
	text := StringMessage(opts.Provider, outcome)

	messages := make([]any, 0, len(opts.Encodings))
	for _, enc := range opts.Encodings {
		switch enc {
		case EncodingString:
			messages = append(messages, text)
		case EncodingObject:
			messages = append(messages, ObjectMessage{
				Provider: opts.Provider,
				Type:     outcome.Type,
				Token:    outcome.Payload,
			})
		}
	}

	plan := Plan{
		Outcome:      outcome,
		Display:      text,
		Messages:     messages,
		TargetOrigin: AnyOrigin,
		IntervalMS:   opts.Interval.Milliseconds(),
		DurationMS:   opts.Duration.Milliseconds(),
		CloseDelayMS: opts.CloseDelay.Milliseconds(),
		KeepOpen:     opts.KeepOpen,
	}

	if site != nil {
		plan.TargetOrigin = site.Origin()
		plan.FallbackURL = FallbackURL(*site, outcome)
	}

	return plan
}

// FallbackURL builds the admin page URL carrying the outcome, used when the
// popup has lost its opener
func FallbackURL(site validation.Site, o Outcome) string {
	key := "token"
	if !o.OK() {
		key = "error"
	}
	return site.Origin() + fallbackPath + "?" + key + "=" + url.QueryEscape(o.Payload)
}
