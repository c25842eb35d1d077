package audible

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sydlexius/audible-agent/internal/provider"
)

func TestMapProduct_PrefersAuthorASIN(t *testing.T) {
	b := mapProduct("B002V1OX7O", &Product{
		ASIN:    "B002V1OX7O",
		Title:   "Dune",
		Authors: []Contributor{{ASIN: "B000APZOQA", Name: "Frank Herbert"}, {Name: "Second Author"}},
		Narrators: []Contributor{
			{Name: "Scott Brick"},
			{Name: ""},
		},
		ProductImages: map[string]string{"360": "small.jpg", "1024": "large.jpg"},
		ReleaseDate:   "2007-03-27",
	})

	assert.Equal(t, "B002V1OX7O", b.ID)
	assert.Equal(t, "Frank Herbert", b.ParentTitle)
	assert.Equal(t, "B000APZOQA", b.ParentID)
	assert.Equal(t, "large.jpg", b.Thumb)
	assert.Equal(t, []string{"Scott Brick"}, b.Narrators)
	assert.True(t, b.IsWork())
}

func TestMapProduct_IDFallsBackToRequestedASIN(t *testing.T) {
	b := mapProduct("B002V1OX7O", &Product{
		Title:   "Dune",
		Authors: []Contributor{{Name: "Frank Herbert"}},
	})
	assert.Equal(t, "B002V1OX7O", b.ID)

	own := mapProduct("B002V1OX7O", &Product{
		ASIN:    "B002V1OX7P",
		Title:   "Dune",
		Authors: []Contributor{{Name: "Frank Herbert"}},
	})
	assert.Equal(t, "B002V1OX7P", own.ID)
}

func TestMapProfile(t *testing.T) {
	b := mapProfile("B000APZOQA", authorProfile{Name: "Frank Herbert", Bio: "bio", Image: "img.jpg"})
	assert.Equal(t, "B000APZOQA", b.ID)
	assert.Equal(t, "Frank Herbert", b.Title)
	assert.Equal(t, "bio", b.Summary)
	assert.Equal(t, "img.jpg", b.Thumb)
	assert.False(t, b.IsWork())
	assert.Empty(t, b.ParentID)
}

func TestFallbackParentID(t *testing.T) {
	hex32 := regexp.MustCompile(`^[0-9a-f]{32}$`)

	a := fallbackParentID("Anonymous Collective")
	assert.Regexp(t, hex32, a)
	assert.Equal(t, a, fallbackParentID("Anonymous Collective"))
	assert.Equal(t, a, fallbackParentID("  Anonymous   Collective "))
	assert.NotEqual(t, a, fallbackParentID("Another Collective"))
}

func TestLargestImage(t *testing.T) {
	tests := []struct {
		name   string
		images map[string]string
		want   string
	}{
		{"numeric not lexical", map[string]string{"500": "a", "1024": "b", "360": "c"}, "b"},
		{"ignores non-numeric keys", map[string]string{"large": "x", "360": "c"}, "c"},
		{"skips empty urls", map[string]string{"2400": "", "500": "a"}, "a"},
		{"empty", map[string]string{}, ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, largestImage(tt.images))
		})
	}
}

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2007-03-27", time.Date(2007, 3, 27, 0, 0, 0, 0, time.UTC)},
		{"2007-03-27T00:00:00Z", time.Date(2007, 3, 27, 0, 0, 0, 0, time.UTC)},
		{"2007-03-27T05:00:00+05:00", time.Date(2007, 3, 27, 0, 0, 0, 0, time.UTC)},
		{"2007-03-27T22:00:00-05:00", time.Date(2007, 3, 27, 0, 0, 0, 0, time.UTC)},
		{"2007-03-27T01:00:00+09:00", time.Date(2007, 3, 27, 0, 0, 0, 0, time.UTC)},
		{"2007-03-27T10:30:00", time.Date(2007, 3, 27, 0, 0, 0, 0, time.UTC)},
		{" 2007-03-27 ", time.Date(2007, 3, 27, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"March 2007", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(parseReleaseDate(tt.in)), "got %v", parseReleaseDate(tt.in))
		})
	}
}

func TestMapSearchItem(t *testing.T) {
	var meta ProductMetadata
	meta.ASIN = "B002V8N37Q"
	meta.Title.Value = "Dune Messiah"
	meta.Rating.Count = 41208
	meta.CoverArt.URL = "cover.jpg"

	backfill := &provider.BookMetadata{
		ParentTitle: "Frank Herbert",
		ParentID:    "B000APZOQA",
		ReleaseDate: time.Date(2007, 5, 1, 0, 0, 0, 0, time.UTC),
		Thumb:       "ignored.jpg",
	}

	c := mapSearchItem(meta, backfill, 2, provider.BookType)
	assert.Equal(t, "B002V8N37Q", c.ID)
	assert.Equal(t, "cover.jpg", c.Thumb)
	assert.Equal(t, 41208, c.RatingCount)
	assert.Equal(t, 94, c.Score)
	assert.Equal(t, "B000APZOQA", c.ParentID)
	assert.Equal(t, provider.BookType, c.Type)

	bare := mapSearchItem(meta, nil, 0, provider.BookType)
	assert.Equal(t, 100, bare.Score)
	assert.Empty(t, bare.ParentID)
	assert.True(t, bare.ReleaseDate.IsZero())
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`{"count": 12}`, 12},
		{`{"count": "12"}`, 12},
		{`{"count": 12.0}`, 12},
		{`{"count": null}`, 0},
		{`{"count": "lots"}`, 0},
		{`{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var v struct {
				Count flexInt `json:"count"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &v))
			assert.Equal(t, tt.want, int(v.Count))
		})
	}
}
