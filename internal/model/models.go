// Package model defines the shared data structures flowing through the pipeline.
package model

import (
	"fmt"
	"time"
)

// Status tracks the analysis lifecycle of a stored posting.
//
//	pending ──► scored   (scorer succeeded, score persisted)
//	pending ──► failed   (scorer raised; posting kept for retry/audit)
//
// scored and failed are terminal until the weekly refresh evaluates retention.
type Status string

const (
	StatusPending Status = "pending"
	StatusScored  Status = "scored"
	StatusFailed  Status = "failed"
)

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusScored, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown posting status %q", s)
}

// Posting is one job listing record. It is created in memory by the extractor
// with Title/Company/URL/Source, enriched with a Description in a second pass,
// scored, and only then acquires persistent identity via Fingerprint.
type Posting struct {
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source"`
	Score       *int      `json:"score,omitempty"` // nil until scored; 0..100 once set
	Fingerprint string    `json:"fingerprint"`
	Status      Status    `json:"status"`
	IngestedAt  time.Time `json:"ingestedAt"`
}

// Text returns the lowercase-insensitive matching surface for scoring:
// title and description concatenated. An absent description degrades to an
// empty string, never an error.
func (p Posting) Text() string {
	if p.Description == "" {
		return p.Title
	}
	return p.Title + " " + p.Description
}

// SearchParams narrows a listing-page search on an external board.
type SearchParams struct {
	Keywords        string
	Location        string
	ExperienceLevel string // optional: "junior", "mid", "senior"
}

// Criteria holds the user's scoring preferences. Immutable for the duration
// of a run; supplied by the configuration layer.
type Criteria struct {
	Keywords         []string
	Locations        []string
	ExperienceLevel  string // "", "junior", "mid" or "senior"
	CoreSkills       []string
	RemotePreference string // "", "remote" or "hybrid"
	ExcludedKeywords []string
}
