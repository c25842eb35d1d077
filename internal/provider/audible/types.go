package audible

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Audible API response types. Only the fields the agent reads are declared;
// everything else in the payload is ignored so unrelated drift does not
// break decoding.

// ProductResponse is the top-level response from the catalog product endpoint.
type ProductResponse struct {
	Product Product `json:"product"`
}

// Product is a catalog product. Author-only identifiers come back with just
// an ASIN and no title or authors.
type Product struct {
	ASIN             string            `json:"asin"`
	Title            string            `json:"title"`
	Authors          []Contributor     `json:"authors"`
	Narrators        []Contributor     `json:"narrators"`
	ProductImages    map[string]string `json:"product_images"`
	ReleaseDate      string            `json:"release_date"`
	PublisherSummary string            `json:"publisher_summary"`
	PublisherName    string            `json:"publisher_name"`
}

// Contributor is an author or narrator credit. ASIN is empty for
// contributors without a catalog page.
type Contributor struct {
	ASIN string `json:"asin"`
	Name string `json:"name"`
}

// SearchResponse is the top-level response from the browse search screen.
// Results live in one of several sections whose position is not stable.
type SearchResponse struct {
	Sections []SearchSection `json:"sections"`
}

// SearchSection is one block of the search screen.
type SearchSection struct {
	Model *SectionModel `json:"model"`
}

// SectionModel holds a section's items and the API's result bookkeeping.
type SectionModel struct {
	Items   []SearchItem `json:"items"`
	APIData *APIData     `json:"api_data"`
}

// APIData carries the reported result count for a section.
type APIData struct {
	ResultCount struct {
		Total flexInt `json:"total"`
	} `json:"result_count"`
}

// SearchItem is a single search hit.
type SearchItem struct {
	Model struct {
		ProductMetadata ProductMetadata `json:"product_metadata"`
	} `json:"model"`
}

// ProductMetadata is the summary of a product embedded in a search hit.
type ProductMetadata struct {
	ASIN  string `json:"asin"`
	Title struct {
		Value string `json:"value"`
	} `json:"title"`
	Rating struct {
		Count flexInt `json:"count"`
	} `json:"rating"`
	CoverArt struct {
		URL string `json:"url"`
	} `json:"cover_art"`
}

// flexInt decodes a count that the API has sent as a number, a float, a
// numeric string, or null.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	var fl float64
	if err := json.Unmarshal(data, &fl); err != nil {
		// Unparseable counts are treated as absent rather than failing the
		// whole response.
		*f = 0
		return nil //nolint:nilerr
	}
	*f = flexInt(math.Round(fl))
	return nil
}
