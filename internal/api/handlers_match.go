package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sydlexius/audible-agent/internal/plexml"
	"github.com/sydlexius/audible-agent/internal/provider"
)

// maxMatchBody bounds the match request body.
const maxMatchBody = 64 << 10

// matchRequestSchema describes the body the media server posts to the
// match endpoint. Unknown fields are allowed.
const matchRequestSchema = `{
  "type": "object",
  "required": ["type", "title"],
  "properties": {
    "type":        {"type": "integer"},
    "title":       {"type": "string"},
    "parentTitle": {"type": ["string", "null"]}
  }
}`

var matchSchema = mustSchema(matchRequestSchema)

// matchRequest is the decoded match body. Type is compared numerically.
type matchRequest struct {
	Title       string  `json:"title"`
	ParentTitle string  `json:"parentTitle"`
	Type        float64 `json:"type"`
}

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic("compiling match request schema: " + err.Error())
	}
	return schema
}

// handleMatches resolves a title/author pair to candidates. Bodies that do
// not validate and non-book types get an empty container; nothing is
// looked up for them.
func (r *Router) handleMatches(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxMatchBody))
	if err != nil {
		r.logger.Info("unreadable match request", slog.String("error", err.Error()))
		r.writeXML(w, req, plexml.MediaContainer())
		return
	}

	if problems := validateMatchRequest(body); len(problems) > 0 {
		r.logger.Info("invalid match request", slog.String("problems", strings.Join(problems, "; ")))
		r.writeXML(w, req, plexml.MediaContainer())
		return
	}

	var m matchRequest
	if err := json.Unmarshal(body, &m); err != nil {
		r.logger.Info("invalid match request", slog.String("error", err.Error()))
		r.writeXML(w, req, plexml.MediaContainer())
		return
	}

	// Integral floats such as 21.0 are the same type code.
	if m.Type != provider.BookType {
		r.logger.Info("only book matches are supported", slog.Float64("type", m.Type))
		r.writeXML(w, req, plexml.MediaContainer())
		return
	}

	q := provider.MatchQuery{Title: m.Title, ParentTitle: m.ParentTitle, Type: provider.BookType}
	candidates := r.books.Match(detach(req.Context()), q)
	r.writeXML(w, req, plexml.Candidates(r.identifier, candidates))
}

// validateMatchRequest returns one message per schema violation.
func validateMatchRequest(body []byte) []string {
	result, err := matchSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		problems[i] = desc.String()
	}
	return problems
}
