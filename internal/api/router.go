package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sydlexius/audible-agent/internal/api/middleware"
	"github.com/sydlexius/audible-agent/internal/logging"
	"github.com/sydlexius/audible-agent/internal/plexml"
	"github.com/sydlexius/audible-agent/internal/provider"
)

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Books      provider.BookProvider
	LogManager *logging.Manager
	Logger     *slog.Logger
	Identifier string
	Title      string
}

// Router serves the custom metadata agent protocol plus operational
// endpoints.
type Router struct {
	books      provider.BookProvider
	logManager *logging.Manager
	logger     *slog.Logger
	identifier string
	title      string
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		books:      deps.Books,
		logManager: deps.LogManager,
		logger:     deps.Logger.With(slog.String("component", "api")),
		identifier: deps.Identifier,
		title:      deps.Title,
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Agent protocol
	mux.HandleFunc("GET /{$}", r.handleProvider)
	mux.HandleFunc("GET /library/metadata/{id}", r.handleMetadata)
	mux.HandleFunc("GET /library/metadata/{id}/images", r.handleEmptyContainer)
	mux.HandleFunc("GET /library/metadata/{id}/children", r.handleEmptyContainer)
	mux.HandleFunc("POST /library/metadata/matches", r.handleMatches)

	// Operational
	mux.HandleFunc("GET /healthz", r.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /debug/logging", r.handleGetLogging)
	mux.HandleFunc("PUT /debug/logging", r.handleUpdateLogging)

	var h http.Handler = mux
	h = middleware.SecurityHeaders(h)
	h = middleware.Logging(r.logger)(h)
	return middleware.RequestID(h)
}

// capabilities is the document served at the agent root.
func (r *Router) capabilities() plexml.Element {
	return plexml.MediaProvider(r.identifier, r.title, plexml.DefaultFeatures)
}
