// Package store persists postings keyed by fingerprint and implements the
// weekly refresh/retention policy over the persisted set.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/svensoldin/job-searcher/internal/model"
)

// RetentionWindow is the horizon beyond which stored records not re-confirmed
// by a refresh batch are purged.
const RetentionWindow = 7 * 24 * time.Hour

// ErrUnavailable signals that the persistence layer is unreachable. This is
// fatal to a run: silent partial persistence is worse than a visible failure.
var ErrUnavailable = errors.New("storage unavailable")

// Stats is a cheap aggregate read for observability.
type Stats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Scored  int `json:"scored"`
	Failed  int `json:"failed"`
}

// Store is the persistence contract used by the pipeline. Fingerprint is the
// canonical identity key for save/exists checks; WeeklyRefresh compares by
// URL, since a re-listed posting may change title casing while remaining the
// same live listing.
type Store interface {
	// Save persists p under its fingerprint if not already present and
	// reports whether a new record was written. false is a legitimate
	// outcome, not an error.
	Save(ctx context.Context, p model.Posting) (bool, error)

	// MarkScored transitions a pending record to scored with the given score.
	MarkScored(ctx context.Context, fingerprint string, score int) error

	// MarkFailed transitions a pending record to failed. Failed postings are
	// retained so they stay visible for retry and audit.
	MarkFailed(ctx context.Context, fingerprint string) error

	// WeeklyRefresh inserts postings with previously-unseen URLs, preserves
	// records whose URL reappears in batch, and deletes records older than
	// the retention window whose URL is absent from batch. Returns the
	// number of records inserted.
	WeeklyRefresh(ctx context.Context, batch []model.Posting) (int, error)

	// GetPending returns up to limit unscored records, newest first.
	GetPending(ctx context.Context, limit int) ([]model.Posting, error)

	// GetByScoreAtLeast returns up to limit scored records with
	// score >= threshold, best score first.
	GetByScoreAtLeast(ctx context.Context, threshold, limit int) ([]model.Posting, error)

	// Stats returns aggregate record counts by lifecycle status.
	Stats(ctx context.Context) (Stats, error)
}
