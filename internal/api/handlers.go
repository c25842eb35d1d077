package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sydlexius/audible-agent/internal/api/middleware"
	"github.com/sydlexius/audible-agent/internal/plexml"
	"github.com/sydlexius/audible-agent/internal/version"
)

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.Commit,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleProvider(w http.ResponseWriter, req *http.Request) {
	r.writeXML(w, req, r.capabilities())
}

func (r *Router) handleMetadata(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	book := r.books.GetBook(detach(req.Context()), id)
	if book == nil {
		r.writeXML(w, req, plexml.MediaContainer())
		return
	}
	r.writeXML(w, req, plexml.MediaContainer(plexml.FromMetadata(r.identifier, book)))
}

// handleEmptyContainer answers sub-resources the agent does not provide.
func (r *Router) handleEmptyContainer(w http.ResponseWriter, req *http.Request) {
	r.logger.Debug("sub-resource not supported",
		slog.String("path", req.URL.Path),
		slog.String("id", req.PathValue("id")))
	r.writeXML(w, req, plexml.MediaContainer())
}

// writeXML renders doc and always answers 200. The body is logged at debug.
func (r *Router) writeXML(w http.ResponseWriter, req *http.Request, doc plexml.Element) {
	var buf bytes.Buffer
	if err := plexml.Render(&buf, doc); err != nil {
		r.logger.Error("rendering response", slog.String("error", err.Error()))
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	if r.logger.Enabled(req.Context(), slog.LevelDebug) {
		r.logger.Debug("response body",
			slog.String("request_id", middleware.RequestIDFromContext(req.Context())),
			slog.String("xml", buf.String()))
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

// detach keeps request-scoped values but not cancellation, so a lookup that
// has started runs to completion even if the media server hangs up.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
