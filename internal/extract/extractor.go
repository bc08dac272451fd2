// Package extract turns listing-search pages and posting detail pages into
// structured data, tolerating markup drift via ranked locator chains.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/svensoldin/job-searcher/internal/browser"
	"github.com/svensoldin/job-searcher/internal/model"
)

// ErrSourceUnavailable signals that a source's listing page could not be
// retrieved at all. The source contributes an empty sequence for the run;
// other sources are unaffected.
var ErrSourceUnavailable = errors.New("source unavailable")

// Extractor drives the browsing session against a source's pages.
type Extractor struct {
	session *browser.Session
	logger  *slog.Logger
}

// New returns an Extractor bound to the given session.
func New(session *browser.Session, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{session: session, logger: logger}
}

// ListPostings fetches the source's search page and returns the postings its
// locator chain can parse. "Page loaded but no results" is an empty slice,
// not an error; ErrSourceUnavailable is returned only when the page itself
// could not be retrieved.
func (e *Extractor) ListPostings(ctx context.Context, src Source, params model.SearchParams) ([]model.Posting, error) {
	doc, err := e.session.GetDocument(ctx, src.SearchURL(params))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, src.Name(), err)
	}

	postings := ExtractListings(doc, src.ListingLocators())
	if postings == nil {
		e.logger.Info("no listings parsed", "source", src.Name())
		return []model.Posting{}, nil
	}

	e.logger.Info("listings parsed", "source", src.Name(), "count", len(postings))
	return postings, nil
}

// FetchDescription fetches a posting detail page and returns its best-effort
// plain-text body. An exhausted locator chain yields an empty string, so
// callers treat "no description" as a normal outcome. The returned error is
// non-nil only when the page itself could not be retrieved; callers degrade
// that single item rather than aborting the batch.
func (e *Extractor) FetchDescription(ctx context.Context, src Source, url string) (string, error) {
	doc, err := e.session.GetDocument(ctx, url)
	if err != nil {
		return "", fmt.Errorf("detail page %s: %w", url, err)
	}

	text, ok := ExtractText(doc, src.DescriptionLocators())
	if !ok {
		e.logger.Debug("no description region found", "source", src.Name(), "url", url)
		return "", nil
	}
	return text, nil
}
