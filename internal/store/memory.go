package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/svensoldin/job-searcher/internal/dedupe"
	"github.com/svensoldin/job-searcher/internal/model"
)

// Memory is an in-process Store used by tests and the offline dev mode.
// It implements the same lifecycle and retention semantics as the Postgres
// store over a mutex-guarded map.
type Memory struct {
	mu       sync.Mutex
	postings map[string]model.Posting
	now      func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		postings: make(map[string]model.Posting),
		now:      time.Now,
	}
}

// SetClock overrides the store's notion of now. Test hook for retention
// scenarios; not safe to call concurrently with other methods.
func (m *Memory) SetClock(now func() time.Time) { m.now = now }

func (m *Memory) Save(_ context.Context, p model.Posting) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(p), nil
}

func (m *Memory) saveLocked(p model.Posting) bool {
	if p.Fingerprint == "" {
		p.Fingerprint = dedupe.Fingerprint(p)
	}
	if _, exists := m.postings[p.Fingerprint]; exists {
		return false
	}
	if p.Status == "" {
		p.Status = model.StatusPending
	}
	if p.IngestedAt.IsZero() {
		p.IngestedAt = m.now()
	}
	m.postings[p.Fingerprint] = p
	return true
}

func (m *Memory) MarkScored(_ context.Context, fingerprint string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.postings[fingerprint]
	if !ok {
		return nil
	}
	p.Score = &score
	p.Status = model.StatusScored
	m.postings[fingerprint] = p
	return nil
}

func (m *Memory) MarkFailed(_ context.Context, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.postings[fingerprint]
	if !ok {
		return nil
	}
	p.Status = model.StatusFailed
	m.postings[fingerprint] = p
	return nil
}

func (m *Memory) WeeklyRefresh(_ context.Context, batch []model.Posting) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := make(map[string]struct{}, len(m.postings))
	for _, p := range m.postings {
		existing[p.URL] = struct{}{}
	}

	plan := planRefresh(existing, batch, m.now())

	inserted := 0
	for _, p := range plan.insert {
		if m.saveLocked(p) {
			inserted++
		}
	}

	for fp, p := range m.postings {
		if plan.shouldPurge(p.URL, p.IngestedAt) {
			delete(m.postings, fp)
		}
	}

	return inserted, nil
}

func (m *Memory) GetPending(_ context.Context, limit int) ([]model.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Posting
	for _, p := range m.postings {
		if p.Status == model.StatusPending {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngestedAt.After(out[j].IngestedAt) })
	return truncate(out, limit), nil
}

func (m *Memory) GetByScoreAtLeast(_ context.Context, threshold, limit int) ([]model.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Posting
	for _, p := range m.postings {
		if p.Score != nil && *p.Score >= threshold {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if *out[i].Score != *out[j].Score {
			return *out[i].Score > *out[j].Score
		}
		return out[i].IngestedAt.After(out[j].IngestedAt)
	})
	return truncate(out, limit), nil
}

func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{Total: len(m.postings)}
	for _, p := range m.postings {
		switch p.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusScored:
			s.Scored++
		case model.StatusFailed:
			s.Failed++
		}
	}
	return s, nil
}

// Get returns a stored posting by fingerprint. Test helper.
func (m *Memory) Get(fingerprint string) (model.Posting, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.postings[fingerprint]
	return p, ok
}

func truncate(ps []model.Posting, limit int) []model.Posting {
	if limit > 0 && len(ps) > limit {
		return ps[:limit]
	}
	return ps
}
