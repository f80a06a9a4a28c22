package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"bookshelf/src/internal/bookmeta"
	"bookshelf/src/internal/httpx"
	"bookshelf/src/internal/normalize"
)

const (
	googleBooksEndpoint = "https://www.googleapis.com/books/v1/volumes"
	openLibraryEndpoint = "https://openlibrary.org/search.json"

	openLibraryFields = "key,title,subtitle,author_name,publisher,first_publish_year,publish_date,number_of_pages_median,subject,language,isbn,cover_i"
)

// listKey is the top-level document key holding result items.
func listKey(s bookmeta.Source) string {
	if s == bookmeta.OpenLibrary {
		return "docs"
	}
	return "items"
}

// query runs one catalog call through the cache.
func (c *Client) query(ctx context.Context, src bookmeta.Source, q bookmeta.Query, maxResults int) ([]bookmeta.BookRecord, error) {
	n := ClampMaxResults(src, maxResults)
	key := Key{Source: src, Query: q.Key(), MaxResults: n}
	if c.cache != nil {
		if recs, ok := c.cache.Get(ctx, key); ok {
			c.logger.DebugContext(ctx, "catalog cache hit", "key", key.String())
			return capResults(recs, n), nil
		}
	}
	endpoint := c.endpointFor(src, q, n)
	c.logger.DebugContext(ctx, "catalog request", "source", src, "url", redactKey(endpoint))
	items, err := c.fetch(ctx, src, endpoint)
	if err != nil {
		return nil, err
	}
	recs, err := normalize.All(src, items)
	if err != nil {
		return nil, err
	}
	recs = capResults(recs, n)
	if c.cache != nil {
		c.cache.Put(ctx, key, recs)
	}
	return recs, nil
}

func capResults(recs []bookmeta.BookRecord, n int) []bookmeta.BookRecord {
	if recs == nil {
		return []bookmeta.BookRecord{}
	}
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}

func (c *Client) endpointFor(src bookmeta.Source, q bookmeta.Query, n int) string {
	v := url.Values{}
	switch src {
	case bookmeta.OpenLibrary:
		if q.IsISBN() {
			v.Set("isbn", q.Value())
		} else {
			v.Set("q", q.Value())
		}
		v.Set("fields", openLibraryFields)
		v.Set("limit", strconv.Itoa(n))
	default:
		if q.IsISBN() {
			v.Set("q", "isbn:"+q.Value())
		} else {
			v.Set("q", q.Value())
		}
		v.Set("maxResults", strconv.Itoa(n))
		if c.googleKey != "" {
			v.Set("key", c.googleKey)
		}
	}
	return c.endpoints[src] + "?" + v.Encode()
}

// fetch performs the GET and returns the raw result items. A document with
// no result list yields zero items.
func (c *Client) fetch(ctx context.Context, src bookmeta.Source, endpoint string) ([]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &bookmeta.UpstreamError{Source: src, Reason: bookmeta.ReasonTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	httpx.SetUA(req)
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, transportError(ctx, src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &bookmeta.UpstreamError{Source: src, Reason: bookmeta.ReasonHTTPStatus, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", b)}
	}
	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		if isTimeout(ctx, err) {
			return nil, &bookmeta.UpstreamError{Source: src, Reason: bookmeta.ReasonTimeout, Err: err}
		}
		return nil, &bookmeta.MalformedError{Source: src, Err: err}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &bookmeta.MalformedError{Source: src, Err: fmt.Errorf("document is %T, want object", doc)}
	}
	raw, ok := obj[listKey(src)]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &bookmeta.MalformedError{Source: src, Err: fmt.Errorf("%q is %T, want array", listKey(src), raw)}
	}
	return items, nil
}

func transportError(ctx context.Context, src bookmeta.Source, err error) error {
	reason := bookmeta.ReasonTransport
	if isTimeout(ctx, err) {
		reason = bookmeta.ReasonTimeout
	}
	return &bookmeta.UpstreamError{Source: src, Reason: reason, Err: err}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// redactKey hides an API key before the URL is logged.
func redactKey(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
