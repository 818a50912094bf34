// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// RootHandler answers the unauthenticated greeting and the authenticated
// echo used by clients to check their key.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleHello handles GET / requests.
func (h *RootHandler) HandleHello(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Hello World"})
}

// HandleData handles POST /data requests. The body is ignored.
func (h *RootHandler) HandleData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Data received successfully (Authenticated)"})
}
