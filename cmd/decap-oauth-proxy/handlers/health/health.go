package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wrale/decap-oauth-proxy/cmd/decap-oauth-proxy/handlers/common"
)

// Checker is a component that can report whether it is usable
type Checker interface {
	CheckHealth(ctx context.Context) error
}

// Handler processes health check requests
type Handler struct {
	provider Checker
	version  string
}

// Response represents the health check response.
// Version is omitted when empty.
type Response struct {
	Status  string         `json:"status"`
	Version string         `json:"version,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// New creates a new health check handler
func New(provider Checker) *Handler {
	return &Handler{
		provider: provider,
		version:  "unknown",
	}
}

// WithVersion sets the version for health check responses
func (h *Handler) WithVersion(version string) *Handler {
	h.version = version
	return h
}

// ServeHTTP handles health check requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	common.SetJSONHeaders(w)

	response := Response{
		Status:  "healthy",
		Version: h.version,
		Details: make(map[string]any),
	}

	if err := h.provider.CheckHealth(r.Context()); err != nil {
		response.Status = "unhealthy"
		response.Details["provider"] = map[string]any{
			"status":  "unhealthy",
			"message": err.Error(),
		}
	} else {
		response.Details["provider"] = map[string]any{
			"status": "healthy",
		}
	}

	body, err := json.Marshal(response)
	if err != nil {
		common.WriteJSONError(w)
		return
	}

	if response.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if _, err := w.Write(append(body, '\n')); err != nil {
		return
	}
}
