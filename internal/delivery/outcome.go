// Package delivery models the result of an authorization attempt and how it
// is relayed from the popup window back to the CMS admin page that opened it
package delivery

// Outcome types as understood by the CMS
const (
	TypeSuccess = "success"
	TypeError   = "error"
)

// Failure reason codes produced by the proxy itself.
// Provider errors are passed through verbatim instead.
const (
	ReasonMissingCode      = "missing_code"
	ReasonBadTokenResponse = "bad_token_response"
	ReasonUnknownError     = "unknown_error"
	ReasonSiteNotAllowed   = "site_not_allowed"
)

// Outcome is the result of one token exchange: an access token on success or
// a short machine-readable reason on failure
type Outcome struct {
	Type    string
	Payload string
}

// Success wraps an access token
func Success(accessToken string) Outcome {
	return Outcome{Type: TypeSuccess, Payload: accessToken}
}

// Failure wraps a reason code. An empty reason becomes unknown_error.
func Failure(reason string) Outcome {
	if reason == "" {
		reason = ReasonUnknownError
	}
	return Outcome{Type: TypeError, Payload: reason}
}

// OK reports whether the outcome carries a token
func (o Outcome) OK() bool {
	return o.Type == TypeSuccess
}
