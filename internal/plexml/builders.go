package plexml

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sydlexius/audible-agent/internal/provider"
)

// Directory types.
const (
	TypeWork   = "work"
	TypeAuthor = "author"
)

// releaseDateLayout is the format of originallyAvailableAt.
const releaseDateLayout = "2006-01-02"

// Feature advertises one capability of the agent.
type Feature struct {
	Type string
	Key  string
}

// DefaultFeatures are the endpoints every agent serves.
var DefaultFeatures = []Feature{
	{Type: "metadata", Key: "/library/metadata"},
	{Type: "match", Key: "/library/metadata/matches"},
}

// MediaProvider builds the capability document served at the agent root.
func MediaProvider(identifier, title string, features []Feature) Element {
	children := make([]Element, 0, len(features))
	for _, f := range features {
		children = append(children, Element{
			Name:  "Feature",
			Attrs: []Attr{{"type", f.Type}, {"key", f.Key}},
		})
	}
	return Element{
		Name:     "MediaProvider",
		Attrs:    []Attr{{"identifier", identifier}, {"title", title}},
		Children: children,
	}
}

// MediaContainer wraps items. Paging is never used, so size and totalSize
// both equal the item count.
func MediaContainer(items ...Element) Element {
	n := strconv.Itoa(len(items))
	return Element{
		Name:     "MediaContainer",
		Attrs:    []Attr{{"offset", "0"}, {"size", n}, {"totalSize", n}},
		Children: items,
	}
}

// DirectoryAttrs is the attribute set of a Directory item.
type DirectoryAttrs struct {
	Title                 string
	RatingKey             string
	Thumb                 string
	ParentTitle           string
	ParentRatingKey       string
	ParentThumb           string
	OriginallyAvailableAt time.Time
	Summary               string

	// Scored marks a match candidate; ratingCount and score are only
	// emitted when it is set.
	Scored      bool
	RatingCount int
	Score       int

	Children []Element
}

// Directory builds an item element. Items with a parent are works, the
// rest are authors. Empty attributes are left out.
func Directory(identifier string, d DirectoryAttrs) Element {
	typ, parentType := TypeAuthor, ""
	if d.ParentRatingKey != "" {
		typ, parentType = TypeWork, TypeAuthor
	}

	var b attrBuilder
	b.add("title", d.Title)
	b.add("type", typ)
	b.add("parentTitle", d.ParentTitle)
	b.add("parentType", parentType)
	b.add("ratingKey", d.RatingKey)
	b.add("parentRatingKey", d.ParentRatingKey)
	b.add("guid", guid(identifier, typ, d.RatingKey))
	if parentType != "" {
		b.add("parentGuid", guid(identifier, parentType, d.ParentRatingKey))
	}
	b.add("key", fmt.Sprintf("/library/metadata/%s/children", d.RatingKey))
	b.add("thumb", d.Thumb)
	b.add("parentThumb", d.ParentThumb)
	if !d.OriginallyAvailableAt.IsZero() {
		b.add("originallyAvailableAt", d.OriginallyAvailableAt.UTC().Format(releaseDateLayout))
		b.add("year", strconv.Itoa(d.OriginallyAvailableAt.UTC().Year()))
	}
	b.add("summary", StripMarkup(d.Summary))
	if d.Scored {
		b.add("ratingCount", strconv.Itoa(d.RatingCount))
		b.add("score", strconv.Itoa(d.Score))
	}

	return Element{Name: "Directory", Attrs: b.attrs, Children: d.Children}
}

// Tag builds a tag child such as Publisher or Narrator.
func Tag(name, value string) Element {
	return Element{Name: name, Attrs: []Attr{{"tag", value}}}
}

// FromMetadata renders a resolved record with its publisher and narrator
// tags.
func FromMetadata(identifier string, m *provider.BookMetadata) Element {
	var tags []Element
	if m.Publisher != "" {
		tags = append(tags, Tag("Publisher", m.Publisher))
	}
	for _, n := range m.Narrators {
		tags = append(tags, Tag("Narrator", n))
	}
	return Directory(identifier, DirectoryAttrs{
		Title:                 m.Title,
		RatingKey:             m.ID,
		Thumb:                 m.Thumb,
		ParentTitle:           m.ParentTitle,
		ParentRatingKey:       m.ParentID,
		OriginallyAvailableAt: m.ReleaseDate,
		Summary:               m.Summary,
		Children:              tags,
	})
}

// FromCandidate renders a match candidate. Candidates carry no tags.
func FromCandidate(identifier string, c provider.MatchCandidate) Element {
	return Directory(identifier, DirectoryAttrs{
		Title:                 c.Title,
		RatingKey:             c.ID,
		Thumb:                 c.Thumb,
		ParentTitle:           c.ParentTitle,
		ParentRatingKey:       c.ParentID,
		OriginallyAvailableAt: c.ReleaseDate,
		Scored:                true,
		RatingCount:           c.RatingCount,
		Score:                 c.Score,
	})
}

// Candidates renders a container of match candidates in order.
func Candidates(identifier string, cs []provider.MatchCandidate) Element {
	items := make([]Element, 0, len(cs))
	for _, c := range cs {
		items = append(items, FromCandidate(identifier, c))
	}
	return MediaContainer(items...)
}

func guid(identifier, typ, key string) string {
	return identifier + "://" + typ + "/" + key
}

type attrBuilder struct {
	attrs []Attr
}

func (b *attrBuilder) add(name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	b.attrs = append(b.attrs, Attr{Name: name, Value: value})
}
