package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svensoldin/job-searcher/internal/model"
)

var refNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func TestPlanRefreshPartitionsBatch(t *testing.T) {
	existing := map[string]struct{}{
		"https://x/old": {},
	}
	batch := []model.Posting{
		{Title: "Old", URL: "https://x/old"},
		{Title: "New", URL: "https://x/new"},
	}

	plan := planRefresh(existing, batch, refNow)

	require.Len(t, plan.insert, 1)
	assert.Equal(t, "New", plan.insert[0].Title)
	assert.Equal(t, 1, plan.preserved)
	assert.Contains(t, plan.keepURLs, "https://x/old")
	assert.Contains(t, plan.keepURLs, "https://x/new")
	assert.Equal(t, refNow.Add(-RetentionWindow), plan.cutoff)
}

func TestShouldPurge(t *testing.T) {
	plan := planRefresh(nil, []model.Posting{{URL: "https://x/confirmed"}}, refNow)

	tenDaysOld := refNow.Add(-10 * 24 * time.Hour)
	twoDaysOld := refNow.Add(-2 * 24 * time.Hour)

	// Stale and unconfirmed: purged.
	assert.True(t, plan.shouldPurge("https://x/stale", tenDaysOld))
	// Stale but re-confirmed by the batch: kept.
	assert.False(t, plan.shouldPurge("https://x/confirmed", tenDaysOld))
	// Fresh records survive regardless.
	assert.False(t, plan.shouldPurge("https://x/fresh", twoDaysOld))
}

func TestPlanRefreshEmptyBatch(t *testing.T) {
	existing := map[string]struct{}{"https://x/1": {}}
	plan := planRefresh(existing, nil, refNow)

	assert.Empty(t, plan.insert)
	assert.Zero(t, plan.preserved)
	// With nothing re-confirmed, every stale record is a purge candidate.
	assert.True(t, plan.shouldPurge("https://x/1", refNow.Add(-8*24*time.Hour)))
}
