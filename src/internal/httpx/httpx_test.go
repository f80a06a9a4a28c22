package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestSetUA(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	if hv := req.Header.Get("User-Agent"); hv != "" {
		t.Fatalf("precondition: UA not empty: %q", hv)
	}
	SetUA(req)
	if hv := req.Header.Get("User-Agent"); hv != UserAgent {
		t.Fatalf("SetUA: want %q, got %q", UserAgent, hv)
	}
	// idempotent
	SetUA(req)
	if hv := req.Header.Get("User-Agent"); hv != UserAgent {
		t.Fatalf("SetUA idempotent: want %q, got %q", UserAgent, hv)
	}
	SetUA(nil)
}

type countingDoer struct{ n int }

func (c *countingDoer) Do(req *http.Request) (*http.Response, error) {
	c.n++
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("")), Header: make(http.Header)}, nil
}

func TestRateLimited_Disabled(t *testing.T) {
	c := &countingDoer{}
	if d := RateLimited(c, 0); d != Doer(c) {
		t.Fatalf("rps 0 should return the wrapped doer")
	}
}

func TestRateLimited_PassesThrough(t *testing.T) {
	c := &countingDoer{}
	d := RateLimited(c, 1000)
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
		if _, err := d.Do(req); err != nil {
			t.Fatalf("do: %v", err)
		}
	}
	if c.n != 3 {
		t.Fatalf("want 3 calls, got %d", c.n)
	}
}

func TestRateLimited_HonoursContext(t *testing.T) {
	c := &countingDoer{}
	d := RateLimited(c, 0.001)
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	if _, err := d.Do(req); err != nil {
		t.Fatalf("first request uses the burst token: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req2, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://example.com", nil)
	if _, err := d.Do(req2); err == nil {
		t.Fatalf("expected limiter wait to fail before deadline")
	} else if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("limiter wait past the deadline should be a deadline error: %v", err)
	}
	if c.n != 1 {
		t.Fatalf("second request must not reach the wrapped doer, got %d calls", c.n)
	}
}
