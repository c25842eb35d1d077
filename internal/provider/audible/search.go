package audible

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sydlexius/audible-agent/internal/metrics"
	"github.com/sydlexius/audible-agent/internal/provider"
)

// Match resolves a title/author pair to ranked candidates. A title carrying
// a bracketed ASIN is looked up directly and never searched. Otherwise the
// catalog is searched and every hit is backfilled with its parent and
// release date, preserving the catalog's order. The result is never nil.
func (a *Adapter) Match(ctx context.Context, q provider.MatchQuery) []provider.MatchCandidate {
	title := provider.StripAnnotations(q.Title)
	parentTitle := provider.StripAnnotations(q.ParentTitle)

	if asin, ok := ExtractASIN(title); ok {
		a.logger.Info("using embedded ASIN", slog.String("asin", asin))
		book := a.GetBook(ctx, asin)
		if book == nil {
			return observe([]provider.MatchCandidate{})
		}
		return observe([]provider.MatchCandidate{candidateFromBook(book, q.Type)})
	}

	a.logger.Info("searching",
		slog.String("title", title),
		slog.String("author", parentTitle))

	resp, err := a.search(ctx, title, parentTitle)
	if err != nil {
		a.logger.Warn("search failed",
			slog.String("title", title),
			slog.String("author", parentTitle),
			slog.String("error", err.Error()))
		return observe([]provider.MatchCandidate{})
	}

	section := firstPopulatedSection(resp)
	if section == nil || section.APIData == nil || section.APIData.ResultCount.Total <= 0 {
		a.logger.Debug("search returned no results", slog.String("title", title))
		return observe([]provider.MatchCandidate{})
	}

	items := withASIN(section.Items)
	if len(items) < len(section.Items) {
		a.logger.Debug("skipping search hits without an ASIN",
			slog.Int("skipped", len(section.Items)-len(items)))
	}

	backfill := a.backfill(ctx, items)

	candidates := make([]provider.MatchCandidate, len(items))
	for i, item := range items {
		candidates[i] = mapSearchItem(item.Model.ProductMetadata, backfill[i], i, q.Type)
	}

	a.logger.Debug("search completed",
		slog.String("title", title),
		slog.Int("results", len(candidates)))

	return observe(candidates)
}

// backfill fetches the full record for every item concurrently. The
// returned slice is indexed like items; a failed lookup leaves nil in its
// slot without affecting the others.
func (a *Adapter) backfill(ctx context.Context, items []SearchItem) []*provider.BookMetadata {
	results := make([]*provider.BookMetadata, len(items))
	var g errgroup.Group
	for i, item := range items {
		g.Go(func() error {
			results[i] = a.GetBook(ctx, item.Model.ProductMetadata.ASIN)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// search runs a keyword search for title and author.
func (a *Adapter) search(ctx context.Context, title, author string) (*SearchResponse, error) {
	params := url.Values{
		"content_type": {"Audiobook"},
		"keywords":     {strings.TrimSpace(title + " " + author)},
	}
	reqURL := a.apiURL + "/1.0/screens/audible-browse/search-ios?" + params.Encode()

	body, err := a.doRequest(ctx, provider.EndpointSearch, reqURL, "application/json")
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	return &resp, nil
}

// firstPopulatedSection returns the first section that has items. The
// results section has been seen at varying positions in the screen.
func firstPopulatedSection(resp *SearchResponse) *SectionModel {
	for _, s := range resp.Sections {
		if s.Model != nil && len(s.Model.Items) > 0 {
			return s.Model
		}
	}
	return nil
}

// withASIN drops hits that carry no identifier. Positions close up so the
// remaining hits score contiguously.
func withASIN(items []SearchItem) []SearchItem {
	kept := make([]SearchItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Model.ProductMetadata.ASIN) != "" {
			kept = append(kept, item)
		}
	}
	return kept
}

func observe(c []provider.MatchCandidate) []provider.MatchCandidate {
	metrics.MatchCandidates.Observe(float64(len(c)))
	return c
}
