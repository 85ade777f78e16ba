package lca

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BasePath is where the assessment API is mounted.
const BasePath = "/api/lca"

// Route defines an HTTP route registration.
type Route struct {
	Path        string
	Method      string
	Handler     func(http.ResponseWriter, *http.Request)
	RateLimited bool
}

// CreateHandlerRegistrations creates the HTTP handler registrations for the LCA frontdoor.
func CreateHandlerRegistrations(handler *Handler, basePath string) []Route {
	return []Route{
		{Path: basePath + "/assess", Method: http.MethodPost, Handler: handler.HandleAssess, RateLimited: true},
		{Path: basePath + "/health", Method: http.MethodGet, Handler: handler.HandleHealth},
		{Path: basePath + "/supported-materials", Method: http.MethodGet, Handler: handler.HandleSupportedMaterials},
	}
}

// Mount registers the frontdoor's routes on r. Rate limited routes are
// wrapped with rateLimit when it is non-nil.
func Mount(r chi.Router, handler *Handler, basePath string, rateLimit func(http.Handler) http.Handler) {
	for _, route := range CreateHandlerRegistrations(handler, basePath) {
		var h http.Handler = http.HandlerFunc(route.Handler)
		if route.RateLimited && rateLimit != nil {
			h = rateLimit(h)
		}
		r.Method(route.Method, route.Path, h)
	}
}
