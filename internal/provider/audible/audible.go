package audible

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sydlexius/audible-agent/internal/metrics"
	"github.com/sydlexius/audible-agent/internal/provider"
	"github.com/sydlexius/audible-agent/internal/version"
)

const (
	defaultAPIBaseURL  = "https://api.audible.com"
	defaultSiteBaseURL = "https://www.audible.com"
	defaultImageSizes  = "360,1024"
	defaultTimeout     = 15 * time.Second

	// productResponseGroups asks for everything the mapper reads: core
	// attributes, contributors, extended attributes and media.
	productResponseGroups = "product_attrs,contributors,product_extended_attrs,media"
)

// Options configures an Adapter. Zero values fall back to defaults.
type Options struct {
	APIBaseURL  string
	SiteBaseURL string
	ImageSizes  string
	Timeout     time.Duration
}

// Adapter implements provider.BookProvider for the Audible catalog.
type Adapter struct {
	client     *http.Client
	limiter    *provider.RateLimiterMap
	logger     *slog.Logger
	apiURL     string
	siteURL    string
	imageSizes string
}

// New creates an Audible adapter with the default URLs.
func New(limiter *provider.RateLimiterMap, logger *slog.Logger) *Adapter {
	return NewWithOptions(limiter, logger, Options{})
}

// NewWithBaseURL creates an Audible adapter with custom base URLs (for testing).
func NewWithBaseURL(limiter *provider.RateLimiterMap, logger *slog.Logger, apiURL, siteURL string) *Adapter {
	return NewWithOptions(limiter, logger, Options{APIBaseURL: apiURL, SiteBaseURL: siteURL})
}

// NewWithOptions creates an Audible adapter from explicit options.
func NewWithOptions(limiter *provider.RateLimiterMap, logger *slog.Logger, opts Options) *Adapter {
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = defaultAPIBaseURL
	}
	if opts.SiteBaseURL == "" {
		opts.SiteBaseURL = defaultSiteBaseURL
	}
	if opts.ImageSizes == "" {
		opts.ImageSizes = defaultImageSizes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Adapter{
		client:     &http.Client{Timeout: opts.Timeout},
		limiter:    limiter,
		logger:     logger.With(slog.String("provider", "audible")),
		apiURL:     strings.TrimRight(opts.APIBaseURL, "/"),
		siteURL:    strings.TrimRight(opts.SiteBaseURL, "/"),
		imageSizes: opts.ImageSizes,
	}
}

// Name returns the provider name.
func (a *Adapter) Name() provider.ProviderName { return provider.NameAudible }

// GetBook resolves an ASIN to a record. Products with a title and at least
// one author become works; anything else is treated as a person and
// resolved from the public author page. Malformed ASINs and upstream
// failures yield nil.
func (a *Adapter) GetBook(ctx context.Context, asin string) *provider.BookMetadata {
	if !LooksLikeASIN(asin) {
		metrics.CatalogRequests.WithLabelValues(string(provider.EndpointProduct), metrics.OutcomeRejected).Inc()
		a.logger.Info("not a valid ASIN, skipping lookup", slog.String("asin", asin))
		return nil
	}

	a.logger.Info("fetching metadata", slog.String("asin", asin))

	product, err := a.fetchProduct(ctx, asin)
	if err != nil {
		a.logFailure("product lookup failed", asin, err)
		return nil
	}

	if product.Title != "" && len(product.Authors) > 0 {
		return mapProduct(asin, product)
	}

	a.logger.Debug("no product record, trying author page", slog.String("asin", asin))
	profile, err := a.fetchProfile(ctx, asin)
	if err != nil {
		a.logFailure("author page lookup failed", asin, err)
		return nil
	}
	return mapProfile(asin, profile)
}

// fetchProduct requests the structured product record.
func (a *Adapter) fetchProduct(ctx context.Context, asin string) (*Product, error) {
	params := url.Values{
		"response_groups": {productResponseGroups},
		"image_sizes":     {a.imageSizes},
	}
	reqURL := a.apiURL + "/1.0/catalog/products/" + url.PathEscape(asin) + "?" + params.Encode()

	body, err := a.doRequest(ctx, provider.EndpointProduct, reqURL, "application/json")
	if err != nil {
		return nil, err
	}

	var resp ProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing product response: %w", err)
	}
	return &resp.Product, nil
}

// doRequest executes an HTTP GET with rate limiting, standard headers and
// request metrics.
func (a *Adapter) doRequest(ctx context.Context, ep provider.Endpoint, reqURL, accept string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, ep); err != nil {
		metrics.CatalogRequests.WithLabelValues(string(ep), metrics.OutcomeUnavailable).Inc()
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameAudible,
			Endpoint: ep,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent())
	req.Header.Set("Accept", accept)

	a.logger.Debug("requesting", slog.String("endpoint", string(ep)), slog.String("url", reqURL))

	start := time.Now()
	resp, err := a.client.Do(req) //nolint:gosec // URL constructed from trusted base + validated ASIN
	metrics.CatalogRequestDuration.WithLabelValues(string(ep)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequests.WithLabelValues(string(ep), metrics.OutcomeUnavailable).Inc()
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameAudible,
			Endpoint: ep,
			Cause:    err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		metrics.CatalogRequests.WithLabelValues(string(ep), metrics.OutcomeNotFound).Inc()
		return nil, &provider.ErrNotFound{
			Provider: provider.NameAudible,
			ID:       reqURL,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		metrics.CatalogRequests.WithLabelValues(string(ep), metrics.OutcomeUnavailable).Inc()
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameAudible,
			Endpoint: ep,
			Cause:    fmt.Errorf("unexpected HTTP %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		metrics.CatalogRequests.WithLabelValues(string(ep), metrics.OutcomeUnavailable).Inc()
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameAudible,
			Endpoint: ep,
			Cause:    fmt.Errorf("reading body: %w", err),
		}
	}
	metrics.CatalogRequests.WithLabelValues(string(ep), metrics.OutcomeOK).Inc()
	return body, nil
}

// logFailure logs an upstream failure. Missing records are expected and
// logged quietly; everything else is a warning.
func (a *Adapter) logFailure(msg, asin string, err error) {
	var notFound *provider.ErrNotFound
	if errors.As(err, &notFound) {
		a.logger.Info(msg, slog.String("asin", asin), slog.String("error", err.Error()))
		return
	}
	a.logger.Warn(msg, slog.String("asin", asin), slog.String("error", err.Error()))
}

func userAgent() string {
	return fmt.Sprintf("AudibleAgent/%s (https://github.com/sydlexius/audible-agent)", version.Version)
}
