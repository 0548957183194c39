// Package scrape fetches external product pages and extracts display
// metadata (title, performer names). Fetches never surface errors to
// callers: a miss is an empty result, not a failure
package scrape

import (
	"context"
	"io"
	"net/http"
	"time"

	"reviewnexus/internal/core/resolve"
	"reviewnexus/internal/core/scoring"
	"reviewnexus/internal/platform/logger"

	gocache "github.com/patrickmn/go-cache"
)

// Metadata is what a page fetch yields. Zero value means nothing found
type Metadata struct {
	Title          string
	PerformerNames []string
}

// Empty reports whether the metadata carries no signal at all
func (m Metadata) Empty() bool { return m.Title == "" && len(m.PerformerNames) == 0 }

const (
	defaultTimeout = 8 * time.Second
	maxCandidates  = 4
	maxBodyBytes   = 2 << 20 // 2MB is plenty for a product page head
	cacheTTL       = 10 * time.Minute

	userAgent = "Mozilla/5.0 (compatible; reviewnexus/1.0)"
)

// Client fetches and caches page metadata
type Client struct {
	http    *http.Client
	timeout time.Duration
	cache   *gocache.Cache
	log     logger.Logger
}

// Option mutates a Client during New
type Option func(*Client)

// WithTimeout overrides the per-fetch timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying http client, used by tests
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a scrape client with a short-TTL result cache so repeated
// product-page reads don't hammer the same upstream URL
func New(log logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		timeout: defaultTimeout,
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchMetadata fetches one URL and extracts metadata from its HTML.
// Timeouts, transport errors and non-2xx responses all yield the zero
// Metadata. Results are cached per URL for a few minutes
func (c *Client) FetchMetadata(ctx context.Context, url string) Metadata {
	if url == "" {
		return Metadata{}
	}
	if v, ok := c.cache.Get(url); ok {
		if m, ok := v.(Metadata); ok {
			return m
		}
	}

	m := c.fetch(ctx, url)
	c.cache.Set(url, m, cacheTTL)
	return m
}

func (c *Client) fetch(ctx context.Context, url string) Metadata {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Metadata{}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "ja,en;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Str("url", url).Err(err).Msg("scrape fetch failed")
		return Metadata{}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("scrape non-2xx")
		return Metadata{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Metadata{}
	}

	return Extract(string(body))
}

// ResolveMetadata tries up to maxCandidates URLs concurrently and picks the
// best result: the first candidate (in input order) whose title qualifies,
// else the first with any signal, else the zero Metadata
func (c *Client) ResolveMetadata(ctx context.Context, platform resolve.Platform, productID string, candidates []string) Metadata {
	urls := dedupeURLs(candidates, maxCandidates)
	if len(urls) == 0 {
		return Metadata{}
	}

	results := make([]Metadata, len(urls))
	done := make(chan int, len(urls))
	for i, u := range urls {
		go func(i int, u string) {
			results[i] = c.FetchMetadata(ctx, u)
			done <- i
		}(i, u)
	}
	for range urls {
		<-done
	}

	for _, m := range results {
		if titleQualifies(m.Title, productID) {
			return enrich(platform, m)
		}
	}
	for _, m := range results {
		if !m.Empty() {
			return enrich(platform, m)
		}
	}
	return Metadata{}
}

// enrich adds platform-specific signals: fanza pages often carry performer
// names in the title segment before the separator. Only used as a last
// resort so real structured-data names are never polluted
func enrich(platform resolve.Platform, m Metadata) Metadata {
	if platform != resolve.PlatformFanza || len(m.PerformerNames) > 0 {
		return m
	}
	m.PerformerNames = NormalizeNames(NamesFromTitle(m.Title))
	return m
}

// titleQualifies rejects empty titles, age-gate interstitials and titles
// that are just the product code echoed back
func titleQualifies(title, productID string) bool {
	if title == "" {
		return false
	}
	if scoring.LooksLikeAgeGate(title) {
		return false
	}
	return !scoring.TitleLooksLikeProductCode(title, productID)
}

func dedupeURLs(in []string, limit int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, limit)
	for _, u := range in {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}
	return out
}
