package audible

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sydlexius/audible-agent/internal/provider"
)

func productJSON(asin, title, author, authorASIN, released string) []byte {
	return fmt.Appendf(nil,
		`{"product":{"asin":%q,"title":%q,"authors":[{"asin":%q,"name":%q}],"release_date":%q}}`,
		asin, title, authorASIN, author, released)
}

func duneProducts(t *testing.T) map[string][]byte {
	t.Helper()
	return map[string][]byte{
		"B002V1OX7O": loadFixture(t, "product_dune.json"),
		"B002V8N37Q": productJSON("B002V8N37Q", "Dune Messiah", "Frank Herbert", "B000APZOQA", "2007-05-01"),
		"B002V8KOV8": productJSON("B002V8KOV8", "Children of Dune", "Frank Herbert", "B000APZOQA", "2007-07-10"),
	}
}

func TestMatch_EmbeddedASINBypassesSearch(t *testing.T) {
	srv := newCatalogServer(t, duneProducts(t), nil, loadFixture(t, "search_dune.json"))
	a := newTestAdapter(srv.Server)

	got := a.Match(context.Background(), provider.MatchQuery{
		Title:       "Dune (Unabridged) [B002V1OX7O]",
		ParentTitle: "Frank Herbert",
		Type:        provider.BookType,
	})

	require.Len(t, got, 1)
	assert.Equal(t, "B002V1OX7O", got[0].ID)
	assert.Equal(t, "Dune", got[0].Title)
	assert.Equal(t, "Frank Herbert", got[0].ParentTitle)
	assert.Equal(t, "B000APZOQA", got[0].ParentID)
	assert.Equal(t, 100, got[0].Score)
	assert.Equal(t, provider.BookType, got[0].Type)

	assert.EqualValues(t, 1, srv.productHits.Load())
	assert.EqualValues(t, 0, srv.searchHits.Load())
}

func TestMatch_EmbeddedASINUnresolvable(t *testing.T) {
	srv := newCatalogServer(t, nil, nil, loadFixture(t, "search_dune.json"))
	a := newTestAdapter(srv.Server)

	got := a.Match(context.Background(), provider.MatchQuery{Title: "Lost [B0MISSING1]", Type: provider.BookType})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.EqualValues(t, 0, srv.searchHits.Load())
}

func TestMatch_RanksByCatalogOrder(t *testing.T) {
	srv := newCatalogServer(t, duneProducts(t), nil, loadFixture(t, "search_dune.json"))
	a := newTestAdapter(srv.Server)

	got := a.Match(context.Background(), provider.MatchQuery{
		Title:       "Dune (Unabridged)",
		ParentTitle: "Frank Herbert",
		Type:        provider.BookType,
	})

	require.Len(t, got, 3)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"B002V1OX7O", "B002V8N37Q", "B002V8KOV8"}, ids)
	assert.Equal(t, []int{100, 97, 94}, []int{got[0].Score, got[1].Score, got[2].Score})

	assert.Equal(t, 158234, got[0].RatingCount)
	assert.Equal(t, 41208, got[1].RatingCount)
	assert.Equal(t, 30112, got[2].RatingCount)

	// Cover comes from the search hit, not the backfilled record.
	assert.Equal(t, "https://m.media-amazon.com/images/I/51dune._SL500_.jpg", got[0].Thumb)
	assert.Equal(t, time.Date(2007, 5, 1, 0, 0, 0, 0, time.UTC), got[1].ReleaseDate)
	for _, c := range got {
		assert.Equal(t, "Frank Herbert", c.ParentTitle)
		assert.Equal(t, "B000APZOQA", c.ParentID)
		assert.Equal(t, provider.BookType, c.Type)
	}

	q := srv.lastQuery.Load().(url.Values)
	assert.Equal(t, "Dune Frank Herbert", q.Get("keywords"))
	assert.Equal(t, "Audiobook", q.Get("content_type"))
	assert.EqualValues(t, 1, srv.searchHits.Load())
	assert.EqualValues(t, 3, srv.productHits.Load())
}

func TestMatch_OrderSurvivesSlowBackfill(t *testing.T) {
	search := loadFixture(t, "search_dune.json")
	products := duneProducts(t)
	// Earlier hits answer last.
	delays := map[string]time.Duration{
		"B002V1OX7O": 150 * time.Millisecond,
		"B002V8N37Q": 75 * time.Millisecond,
		"B002V8KOV8": 0,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/1.0/screens/audible-browse/search-ios" {
			w.Write(search)
			return
		}
		asin := strings.TrimPrefix(r.URL.Path, "/1.0/catalog/products/")
		time.Sleep(delays[asin])
		w.Write(products[asin])
	}))
	defer srv.Close()

	a := newTestAdapter(srv)
	got := a.Match(context.Background(), provider.MatchQuery{Title: "Dune", ParentTitle: "Frank Herbert", Type: provider.BookType})

	require.Len(t, got, 3)
	assert.Equal(t, "B002V1OX7O", got[0].ID)
	assert.Equal(t, "B002V8N37Q", got[1].ID)
	assert.Equal(t, "B002V8KOV8", got[2].ID)
	assert.Equal(t, time.Date(2007, 3, 27, 0, 0, 0, 0, time.UTC), got[0].ReleaseDate)
	assert.Equal(t, time.Date(2007, 7, 10, 0, 0, 0, 0, time.UTC), got[2].ReleaseDate)
}

func TestMatch_BackfillFailureIsIsolated(t *testing.T) {
	products := duneProducts(t)
	delete(products, "B002V8N37Q")
	srv := newCatalogServer(t, products, nil, loadFixture(t, "search_dune.json"))
	a := newTestAdapter(srv.Server)

	got := a.Match(context.Background(), provider.MatchQuery{Title: "Dune", ParentTitle: "Frank Herbert", Type: provider.BookType})

	require.Len(t, got, 3)
	assert.Equal(t, "B002V8N37Q", got[1].ID)
	assert.Equal(t, "Dune Messiah", got[1].Title)
	assert.Equal(t, 97, got[1].Score)
	assert.Empty(t, got[1].ParentTitle)
	assert.Empty(t, got[1].ParentID)
	assert.True(t, got[1].ReleaseDate.IsZero())

	assert.Equal(t, "Frank Herbert", got[0].ParentTitle)
	assert.Equal(t, "Frank Herbert", got[2].ParentTitle)
}

func TestMatch_SkipsHitsWithoutASIN(t *testing.T) {
	search := []byte(`{"sections":[{"model":{"api_data":{"result_count":{"total":3}},"items":[` +
		`{"model":{"product_metadata":{"asin":"B002V1OX7O","title":{"value":"Dune"}}}},` +
		`{"model":{"product_metadata":{"title":{"value":"Dune: Box Set"}}}},` +
		`{"model":{"product_metadata":{"asin":"B002V8N37Q","title":{"value":"Dune Messiah"}}}}` +
		`]}}]}`)
	srv := newCatalogServer(t, duneProducts(t), nil, search)
	a := newTestAdapter(srv.Server)

	got := a.Match(context.Background(), provider.MatchQuery{Title: "Dune", Type: provider.BookType})

	require.Len(t, got, 2)
	assert.Equal(t, "B002V1OX7O", got[0].ID)
	assert.Equal(t, "B002V8N37Q", got[1].ID)
	assert.Equal(t, []int{100, 97}, []int{got[0].Score, got[1].Score})
	assert.Equal(t, "Frank Herbert", got[1].ParentTitle)
	assert.EqualValues(t, 2, srv.productHits.Load())
}

func TestMatch_AllHitsWithoutASIN(t *testing.T) {
	search := []byte(`{"sections":[{"model":{"api_data":{"result_count":{"total":1}},"items":[` +
		`{"model":{"product_metadata":{"title":{"value":"Dune"}}}}]}}]}`)
	srv := newCatalogServer(t, nil, nil, search)
	a := newTestAdapter(srv.Server)

	got := a.Match(context.Background(), provider.MatchQuery{Title: "Dune", Type: provider.BookType})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.EqualValues(t, 0, srv.productHits.Load())
}

func TestMatch_NoResults(t *testing.T) {
	tests := []struct {
		name   string
		search string
	}{
		{"no populated section", `{"sections":[{"model":{"items":[]}},{"model":{"api_data":{"result_count":{"total":0}},"items":[]}}]}`},
		{"no sections", `{"sections":[]}`},
		{"zero total", `{"sections":[{"model":{"api_data":{"result_count":{"total":0}},"items":[{"model":{"product_metadata":{"asin":"B002V1OX7O"}}}]}}]}`},
		{"missing api data", `{"sections":[{"model":{"items":[{"model":{"product_metadata":{"asin":"B002V1OX7O"}}}]}}]}`},
		{"null total", `{"sections":[{"model":{"api_data":{"result_count":{"total":null}},"items":[{"model":{"product_metadata":{"asin":"B002V1OX7O"}}}]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCatalogServer(t, duneProducts(t), nil, []byte(tt.search))
			a := newTestAdapter(srv.Server)

			got := a.Match(context.Background(), provider.MatchQuery{Title: "Dune", Type: provider.BookType})
			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.EqualValues(t, 0, srv.productHits.Load())
		})
	}
}

func TestMatch_EmptyFixture(t *testing.T) {
	srv := newCatalogServer(t, nil, nil, loadFixture(t, "search_empty.json"))
	a := newTestAdapter(srv.Server)

	got := a.Match(context.Background(), provider.MatchQuery{Title: "Nothing Matches This", Type: provider.BookType})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatch_SearchFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := newTestAdapter(srv)
	got := a.Match(context.Background(), provider.MatchQuery{Title: "Dune", Type: provider.BookType})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.EqualValues(t, 1, hits.Load())
}

func TestMatch_MalformedSearchBody(t *testing.T) {
	srv := newCatalogServer(t, nil, nil, []byte(`{"sections": [`))
	a := newTestAdapter(srv.Server)

	got := a.Match(context.Background(), provider.MatchQuery{Title: "Dune", Type: provider.BookType})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatch_TitleOnlyKeywords(t *testing.T) {
	srv := newCatalogServer(t, nil, nil, loadFixture(t, "search_empty.json"))
	a := newTestAdapter(srv.Server)

	a.Match(context.Background(), provider.MatchQuery{Title: "  The  Hobbit (Dramatized) ", Type: provider.BookType})

	q := srv.lastQuery.Load().(url.Values)
	assert.Equal(t, "The Hobbit", q.Get("keywords"))
}
