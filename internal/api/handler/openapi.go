package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
)

// OpenAPIHandler serves the embedded OpenAPI document as JSON.
type OpenAPIHandler struct {
	rawYAML  []byte
	jsonOnce sync.Once
	jsonSpec []byte
	jsonErr  error
}

// NewOpenAPIHandler creates a handler serving yamlSpec as JSON. The
// conversion runs once, on the first request.
func NewOpenAPIHandler(yamlSpec []byte) *OpenAPIHandler {
	return &OpenAPIHandler{rawYAML: yamlSpec}
}

// JSON returns the converted document.
func (h *OpenAPIHandler) JSON() ([]byte, error) {
	h.jsonOnce.Do(func() {
		h.jsonSpec, h.jsonErr = yaml.YAMLToJSON(h.rawYAML)
	})
	return h.jsonSpec, h.jsonErr
}

// ServeHTTP writes the API document as JSON.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	doc, err := h.JSON()
	if err != nil {
		internalError(w, "convert OpenAPI document", middleware.GetRequestID(r.Context()), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		slog.Error("failed to write OpenAPI response", "error", err)
	}
}
