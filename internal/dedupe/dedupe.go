// Package dedupe computes content fingerprints and filters duplicate postings.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/svensoldin/job-searcher/internal/model"
)

// Fingerprint returns a deterministic content hash over the lowercased
// (title, company, url) triple. It is the dedup and storage identity key, so
// it must be stable across process restarts: no salts, no randomness.
// Changing the algorithm invalidates every previously stored identity.
func Fingerprint(p model.Posting) string {
	key := strings.ToLower(p.Title) + "|" + strings.ToLower(p.Company) + "|" + strings.ToLower(p.URL)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// DedupeBatch removes postings with a case-insensitive-equal (title, company)
// pair within the batch, keeping the first occurrence. Stable and
// order-preserving, therefore idempotent.
func DedupeBatch(postings []model.Posting) []model.Posting {
	seen := make(map[string]struct{}, len(postings))
	out := make([]model.Posting, 0, len(postings))
	for _, p := range postings {
		key := strings.ToLower(p.Title) + "|" + strings.ToLower(p.Company)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
