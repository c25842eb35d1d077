package audible

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sydlexius/audible-agent/internal/provider"
)

// authorProfile holds the fields scraped from a public author page. Each
// field is empty when it could not be extracted.
type authorProfile struct {
	Name  string
	Bio   string
	Image string
}

// fetchProfile downloads and scrapes the public author page for asin.
func (a *Adapter) fetchProfile(ctx context.Context, asin string) (authorProfile, error) {
	reqURL := a.siteURL + "/author/" + url.PathEscape(asin)

	body, err := a.doRequest(ctx, provider.EndpointProfile, reqURL, "text/html")
	if err != nil {
		return authorProfile{}, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return authorProfile{}, fmt.Errorf("parsing author page: %w", err)
	}

	return authorProfile{
		Name:  a.extract(asin, "name", func() string { return scrapeName(doc) }),
		Bio:   a.extract(asin, "bio", func() string { return scrapeBio(doc) }),
		Image: a.extract(asin, "image", func() string { return scrapeImage(doc) }),
	}, nil
}

// extract runs one field extraction in isolation. A panic or an empty
// result is logged and yields "", leaving the other fields unaffected.
func (a *Adapter) extract(asin, field string, fn func() string) (value string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("author page field extraction failed",
				slog.String("asin", asin),
				slog.String("field", field),
				slog.Any("panic", r))
			value = ""
		}
	}()
	value = strings.TrimSpace(fn())
	if value == "" {
		a.logger.Debug("author page field missing",
			slog.String("asin", asin),
			slog.String("field", field))
	}
	return value
}

// scrapeName returns the first text child of the bold page heading.
func scrapeName(doc *html.Node) string {
	h1 := findFirst(doc, atom.H1, "bc-text-bold")
	if h1 == nil || h1.FirstChild == nil || h1.FirstChild.Type != html.TextNode {
		return ""
	}
	return h1.FirstChild.Data
}

// scrapeBio returns the plain text of the biography block, one paragraph
// per child element.
func scrapeBio(doc *html.Node) string {
	div := findFirst(doc, atom.Div, "bc-expander-content")
	if div == nil {
		return ""
	}
	var paras []string
	for c := div.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if t := strings.TrimSpace(textContent(c)); t != "" {
			paras = append(paras, t)
		}
	}
	return strings.Join(paras, "\n\n")
}

// scrapeImage returns the author portrait URL, asking for the 240px
// rendition instead of the 120px thumbnail the page embeds.
func scrapeImage(doc *html.Node) string {
	img := findFirst(doc, atom.Img, "author-image-outline")
	if img == nil {
		return ""
	}
	return upsizeImageURL(attr(img, "src"))
}

// upsizeImageURL swaps the 120px size token for 240px. Amazon image URLs
// carry their size directives after the last "._", so only that segment is
// rewritten when present.
func upsizeImageURL(src string) string {
	if src == "" {
		return ""
	}
	if idx := strings.LastIndex(src, "._"); idx >= 0 {
		return src[:idx] + strings.ReplaceAll(src[idx:], "120", "240")
	}
	return strings.ReplaceAll(src, "120", "240")
}

// findFirst returns the first element in document order with the given
// tag and CSS class, or nil.
func findFirst(n *html.Node, tag atom.Atom, class string) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == tag && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates all text below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
