package audible

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sydlexius/audible-agent/internal/provider"
)

// authorNamespace seeds the synthetic identifiers of authors the catalog
// does not issue an ASIN for.
var authorNamespace = uuid.MustParse("3b0f6a52-8f1e-5c8e-9d34-1a7c2e6b9f40")

// mapProduct converts a structured product into a work record. Callers
// must have checked that the product has a title and at least one author.
// The requested asin stands in when the payload omits its own.
func mapProduct(asin string, p *Product) *provider.BookMetadata {
	id := p.ASIN
	if id == "" {
		id = asin
	}
	author := p.Authors[0]
	parentID := author.ASIN
	if parentID == "" {
		parentID = fallbackParentID(author.Name)
	}

	narrators := make([]string, 0, len(p.Narrators))
	for _, n := range p.Narrators {
		if n.Name != "" {
			narrators = append(narrators, n.Name)
		}
	}

	return &provider.BookMetadata{
		ID:          id,
		Title:       p.Title,
		ParentTitle: author.Name,
		ParentID:    parentID,
		Thumb:       largestImage(p.ProductImages),
		ReleaseDate: parseReleaseDate(p.ReleaseDate),
		Summary:     p.PublisherSummary,
		Publisher:   p.PublisherName,
		Narrators:   narrators,
	}
}

// mapProfile converts a scraped author page into a person record.
func mapProfile(asin string, p authorProfile) *provider.BookMetadata {
	return &provider.BookMetadata{
		ID:        asin,
		Title:     p.Name,
		Thumb:     p.Image,
		Summary:   p.Bio,
		Narrators: []string{},
	}
}

// mapSearchItem builds a candidate from a search hit and the record
// resolved for it. Parent and release date come from the backfilled
// record; rating count and cover come from the hit itself.
func mapSearchItem(meta ProductMetadata, backfill *provider.BookMetadata, index, queryType int) provider.MatchCandidate {
	c := provider.MatchCandidate{
		BookMetadata: provider.BookMetadata{
			ID:        meta.ASIN,
			Title:     meta.Title.Value,
			Thumb:     meta.CoverArt.URL,
			Narrators: []string{},
		},
		Type:        queryType,
		RatingCount: int(meta.Rating.Count),
		Score:       scoreForPosition(index),
	}
	if backfill != nil {
		c.ParentTitle = backfill.ParentTitle
		c.ParentID = backfill.ParentID
		c.ReleaseDate = backfill.ReleaseDate
	}
	return c
}

// candidateFromBook wraps a fully resolved record as a top-ranked candidate.
func candidateFromBook(b *provider.BookMetadata, queryType int) provider.MatchCandidate {
	return provider.MatchCandidate{
		BookMetadata: *b,
		Type:         queryType,
		Score:        scoreForPosition(0),
	}
}

// scoreForPosition ranks candidates purely by catalog relevance order:
// 100 for the first hit, then 3 less per position.
func scoreForPosition(index int) int {
	return 100 - 3*index
}

// fallbackParentID derives a stable identifier from an author's name. The
// same name (ignoring surrounding and repeated whitespace) always yields the
// same 32-character hex value.
func fallbackParentID(name string) string {
	normalized := strings.Join(strings.Fields(name), " ")
	id := uuid.NewSHA1(authorNamespace, []byte(normalized))
	return strings.ReplaceAll(id.String(), "-", "")
}

// largestImage returns the image variant with the largest numeric size key.
func largestImage(images map[string]string) string {
	best, bestURL := -1, ""
	for k, v := range images {
		if v == "" {
			continue
		}
		size, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		if size > best {
			best, bestURL = size, v
		}
	}
	return bestURL
}

// releaseDateLayouts are tried in order when parsing a release date.
var releaseDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parseReleaseDate parses a catalog release date into the calendar day it
// was published, at midnight UTC. Any time of day or offset is dropped so
// the day never shifts. Unparseable input yields the zero time, which
// downstream treats as absent.
func parseReleaseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}
