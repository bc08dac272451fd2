package store

import (
	"time"

	"github.com/svensoldin/job-searcher/internal/model"
)

// refreshPlan is the outcome of planning one weekly refresh. The preserved
// and insert sets are computed before any deletion happens, so a record is
// never transiently absent between delete and insert within one refresh.
type refreshPlan struct {
	insert    []model.Posting     // batch postings whose URL is not yet stored
	preserved int                 // batch postings already stored, left untouched
	keepURLs  map[string]struct{} // URLs re-confirmed live by the batch
	cutoff    time.Time           // records ingested before this are purge candidates
}

// planRefresh partitions batch against the URLs already stored and fixes the
// retention cutoff. Deletion spares any record whose URL appears in batch,
// protecting listings that were just re-confirmed as still live.
func planRefresh(existingURLs map[string]struct{}, batch []model.Posting, now time.Time) refreshPlan {
	plan := refreshPlan{
		keepURLs: make(map[string]struct{}, len(batch)),
		cutoff:   now.Add(-RetentionWindow),
	}
	for _, p := range batch {
		plan.keepURLs[p.URL] = struct{}{}
		if _, seen := existingURLs[p.URL]; seen {
			plan.preserved++
			continue
		}
		plan.insert = append(plan.insert, p)
	}
	return plan
}

// shouldPurge reports whether a stored record falls outside the retention
// window and was not re-confirmed by the current batch.
func (plan refreshPlan) shouldPurge(url string, ingestedAt time.Time) bool {
	if _, keep := plan.keepURLs[url]; keep {
		return false
	}
	return ingestedAt.Before(plan.cutoff)
}
