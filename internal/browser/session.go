// Package browser provides the HTTP browsing session used by the extractor.
//
// One Session is owned by the pipeline for the duration of a run. Each fetch
// opens one response body and releases it on every exit path before the
// parsed document is returned to the caller.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/html"
)

const defaultTimeout = 15 * time.Second

// userAgent identifies the client politely to the boards we fetch from.
const userAgent = "job-searcher/1.0 (+https://github.com/svensoldin/job-searcher)"

// ErrUnavailable signals that a page could not be retrieved at all
// (network error, timeout or non-OK status). Content-level absence is not an
// error and is handled by the extractor's locator chains.
var ErrUnavailable = errors.New("page unavailable")

// Session wraps a cookie-carrying HTTP client with a per-request timeout.
type Session struct {
	client *http.Client
}

// NewSession returns a Session with a fresh cookie jar. A non-positive
// timeout falls back to the default.
func NewSession(timeout time.Duration) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookiejar.New: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Session{
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// GetDocument fetches url and returns the parsed HTML document.
// The response body is always closed before returning.
func (s *Session) GetDocument(ctx context.Context, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUnavailable, url, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML from %s: %w", url, err)
	}
	return doc, nil
}

// Close releases idle connections held by the session.
func (s *Session) Close() {
	s.client.CloseIdleConnections()
}
