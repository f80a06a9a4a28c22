package httpx

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// Doer is the minimal HTTP client interface used across packages.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// UserAgent identifies shelf to catalog services.
const UserAgent = "bookshelf/1.0 (+https://github.com/bookshelf/shelf)"

// SetUA sets the UserAgent header on the request.
func SetUA(req *http.Request) {
	if req != nil {
		req.Header.Set("User-Agent", UserAgent)
	}
}

type limitedDoer struct {
	next    Doer
	limiter *rate.Limiter
}

// RateLimited wraps d so that at most rps requests per second are sent.
// A non-positive rps returns d unchanged.
func RateLimited(d Doer, rps float64) Doer {
	if rps <= 0 {
		return d
	}
	return &limitedDoer{next: d, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (l *limitedDoer) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if err := l.limiter.Wait(ctx); err != nil {
		// Wait fails early when the next token lies past the deadline.
		if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return nil, err
	}
	return l.next.Do(req)
}
