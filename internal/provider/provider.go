package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderName uniquely identifies a catalog provider.
type ProviderName string

// Known provider names.
const (
	NameAudible ProviderName = "audible"
)

// DisplayName returns a human-readable name for the provider.
func (n ProviderName) DisplayName() string {
	switch n {
	case NameAudible:
		return "Audible"
	default:
		return string(n)
	}
}

// Endpoint names one upstream surface of a provider. Rate limits and
// metrics are tracked per endpoint because the structured API and the
// public web site have independent quotas.
type Endpoint string

// Known endpoints.
const (
	EndpointProduct Endpoint = "product"
	EndpointSearch  Endpoint = "search"
	EndpointProfile Endpoint = "profile"
)

// BookType is the host's media type code for audiobooks. Match requests
// carrying any other type are not resolved.
const BookType = 21

// BookMetadata is the canonical record resolved from the catalog. A record
// with a ParentID describes a work (an audiobook whose parent is its first
// author). A record without one describes a person, usually an author whose
// identifier has no structured product behind it.
type BookMetadata struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ParentTitle string    `json:"parent_title,omitempty"`
	ParentID    string    `json:"parent_id,omitempty"`
	Thumb       string    `json:"thumb,omitempty"`
	ReleaseDate time.Time `json:"release_date,omitzero"`
	Summary     string    `json:"summary,omitempty"`
	Publisher   string    `json:"publisher,omitempty"`
	Narrators   []string  `json:"narrators"`
}

// IsWork reports whether the record describes a work rather than a person.
func (m *BookMetadata) IsWork() bool {
	return m != nil && m.ParentID != ""
}

// MatchQuery is an ambiguous title/author pair submitted by the host.
type MatchQuery struct {
	Title       string `json:"title"`
	ParentTitle string `json:"parentTitle"`
	Type        int    `json:"type"`
}

// MatchCandidate is one ranked proposal for a MatchQuery.
type MatchCandidate struct {
	BookMetadata
	Type        int `json:"type"`
	RatingCount int `json:"rating_count"`
	Score       int `json:"score"`
}

// BookProvider is implemented by catalog adapters that resolve audiobooks.
type BookProvider interface {
	// Name returns the unique provider identifier.
	Name() ProviderName

	// GetBook resolves an identifier to a record. It returns nil when the
	// identifier is malformed or the catalog could not be reached; failures
	// are logged, never returned.
	GetBook(ctx context.Context, id string) *BookMetadata

	// Match resolves a title/author pair to ranked candidates. An empty
	// slice means no match.
	Match(ctx context.Context, q MatchQuery) []MatchCandidate
}

// ErrProviderUnavailable indicates a transport failure (network error,
// rate limiter abort, unexpected status).
type ErrProviderUnavailable struct {
	Provider ProviderName
	Endpoint Endpoint
	Cause    error
}

func (e *ErrProviderUnavailable) Error() string {
	return fmt.Sprintf("provider %s %s unavailable: %v", e.Provider, e.Endpoint, e.Cause)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Cause }

// ErrNotFound indicates the provider has no data for the requested ID.
type ErrNotFound struct {
	Provider ProviderName
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("provider %s: %s not found", e.Provider, e.ID)
}
