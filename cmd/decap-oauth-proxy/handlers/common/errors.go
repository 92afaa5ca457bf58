package common

import (
	"net/http"
)

// Plain-text bodies returned outside the relay page
const (
	NotFoundMessage      = "Not found"
	MissingConfigMessage = "Missing GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET env vars."
)

// SetNoStore prevents tokens and redirects from being cached
func SetNoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}

// SetJSONHeaders sets required headers for JSON responses
func SetJSONHeaders(w http.ResponseWriter) {
	SetNoStore(w)
	w.Header().Set("Content-Type", "application/json")
}

// WriteText sends a plain-text response with the given status
func WriteText(w http.ResponseWriter, status int, message string) {
	SetNoStore(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		// Client went away; nothing left to report to
		return
	}
}

// WriteNotFound answers requests for paths this service does not handle
func WriteNotFound(w http.ResponseWriter) {
	WriteText(w, http.StatusNotFound, NotFoundMessage)
}

// WriteMissingConfig reports absent client credentials. This is a server
// problem, not something the popup flow can recover from.
func WriteMissingConfig(w http.ResponseWriter) {
	WriteText(w, http.StatusInternalServerError, MissingConfigMessage)
}

// WriteJSONError answers with a fixed server_error body when a JSON response
// could not be encoded
func WriteJSONError(w http.ResponseWriter) {
	// Headers must be set here since they weren't set by caller due to error
	SetJSONHeaders(w)
	w.WriteHeader(http.StatusInternalServerError)

	// Create error response manually since JSON encoding failed
	errResponse := []byte(`{"error":"server_error","error_description":"Failed to encode response"}`)
	if _, writeErr := w.Write(errResponse); writeErr != nil {
		return
	}
}
