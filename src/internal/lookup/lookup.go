// Package lookup searches external book catalogs and returns normalized
// candidate records.
//
// A Client holds no mutable state between calls; every Search is fully
// described by its arguments plus the injected HTTP client and cache.
package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bookshelf/src/internal/bookmeta"
	"bookshelf/src/internal/httpx"
)

const (
	// DefaultTimeout bounds each outbound catalog request.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxResults is used when a caller passes a non-positive limit.
	DefaultMaxResults = 10
)

// Key identifies one cached catalog call.
type Key struct {
	Source     bookmeta.Source
	Query      string
	MaxResults int
}

func (k Key) String() string { return fmt.Sprintf("%s|%d|%s", k.Source, k.MaxResults, k.Query) }

// Cache is an optional read-through cache for catalog calls. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key Key) ([]bookmeta.BookRecord, bool)
	Put(ctx context.Context, key Key, recs []bookmeta.BookRecord)
}

// Client queries the catalogs.
type Client struct {
	doer      httpx.Doer
	cache     Cache
	logger    *slog.Logger
	timeout   time.Duration
	primary   bookmeta.Source
	googleKey string
	endpoints map[bookmeta.Source]string
}

// Option configures a Client.
type Option func(*Client)

// WithDoer sets the HTTP client used for catalog requests.
func WithDoer(d httpx.Doer) Option { return func(c *Client) { c.doer = d } }

// WithCache enables read-through caching of catalog calls.
func WithCache(cache Cache) Option { return func(c *Client) { c.cache = cache } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPrimary sets the catalog used when a caller expresses no preference.
func WithPrimary(s bookmeta.Source) Option {
	return func(c *Client) {
		if s.Valid() {
			c.primary = s
		}
	}
}

// WithGoogleAPIKey attaches an API key to Google Books requests.
func WithGoogleAPIKey(key string) Option { return func(c *Client) { c.googleKey = key } }

// WithEndpoint overrides the search endpoint for a catalog (used by tests
// and mirrors).
func WithEndpoint(s bookmeta.Source, endpoint string) Option {
	return func(c *Client) { c.endpoints[s] = endpoint }
}

// New returns a Client with defaults: Google Books primary, 15s timeout,
// no cache, logs discarded.
func New(opts ...Option) *Client {
	c := &Client{
		doer:    &http.Client{},
		logger:  slog.New(slog.DiscardHandler),
		timeout: DefaultTimeout,
		primary: bookmeta.GoogleBooks,
		endpoints: map[bookmeta.Source]string{
			bookmeta.GoogleBooks: googleBooksEndpoint,
			bookmeta.OpenLibrary: openLibraryEndpoint,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Primary returns the catalog used when no preference is given.
func (c *Client) Primary() bookmeta.Source { return c.primary }

// Search returns at most maxResults candidates for q.
//
// Free-text queries go to the preferred catalog (or the primary) only.
// ISBN queries try that catalog first and, only when it returns no items,
// ask the other catalog once. Errors are never retried or masked by the
// fallback.
func (c *Client) Search(ctx context.Context, q bookmeta.Query, maxResults int, preferred bookmeta.Source) ([]bookmeta.BookRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	src := preferred
	if src == "" {
		src = c.primary
	}
	if !src.Valid() {
		return nil, fmt.Errorf("%w: unknown source %q", bookmeta.ErrInvalidQuery, src)
	}
	recs, err := c.query(ctx, src, q, maxResults)
	if err != nil || !q.IsISBN() || len(recs) > 0 {
		return recs, err
	}
	next := c.other(src)
	c.logger.InfoContext(ctx, "isbn not found, trying secondary catalog", "isbn", q.Value(), "primary", src, "secondary", next)
	return c.query(ctx, next, q, maxResults)
}

// LookupISBN is Search with an ISBN query against the configured primary.
func (c *Client) LookupISBN(ctx context.Context, isbn string, maxResults int) ([]bookmeta.BookRecord, error) {
	return c.Search(ctx, bookmeta.ISBNQuery(isbn), maxResults, "")
}

// other returns the first catalog that is not s.
func (c *Client) other(s bookmeta.Source) bookmeta.Source {
	for _, k := range bookmeta.Sources {
		if k != s {
			return k
		}
	}
	return s
}

// ClampMaxResults maps a caller limit onto the catalog's accepted range.
func ClampMaxResults(s bookmeta.Source, n int) int {
	if n <= 0 {
		n = DefaultMaxResults
	}
	if limit := maxResultsCap(s); n > limit {
		n = limit
	}
	return n
}

func maxResultsCap(s bookmeta.Source) int {
	switch s {
	case bookmeta.GoogleBooks:
		return 40
	case bookmeta.OpenLibrary:
		return 100
	}
	return DefaultMaxResults
}
