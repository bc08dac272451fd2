package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/svensoldin/job-searcher/internal/model"
)

// schema is applied at startup. The postings table is the sole persisted
// shape; fingerprint is the primary key, url is indexed for the refresh
// policy's existence checks.
const schema = `
CREATE TABLE IF NOT EXISTS postings (
	fingerprint TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	url         TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL,
	score       INT,
	status      TEXT NOT NULL DEFAULT 'pending',
	ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS postings_url_idx ON postings (url);
CREATE INDEX IF NOT EXISTS postings_status_idx ON postings (status);`

const postingColumns = `fingerprint, title, company, url, description, source, score, status, ingested_at`

// Postgres implements Store on a pgxpool connection.
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgres wraps an existing pool and applies the schema.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("%w: apply schema: %v", ErrUnavailable, err)
	}
	return &Postgres{pool: pool, now: time.Now}, nil
}

// SetClock overrides the store's notion of now. Test hook.
func (s *Postgres) SetClock(now func() time.Time) { s.now = now }

func (s *Postgres) Save(ctx context.Context, p model.Posting) (bool, error) {
	if p.Status == "" {
		p.Status = model.StatusPending
	}
	ingestedAt := p.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = s.now()
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO postings (`+postingColumns+`)
		 SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		 WHERE NOT EXISTS (
		   SELECT 1 FROM postings WHERE fingerprint = $1
		 )`,
		p.Fingerprint, p.Title, p.Company, p.URL, p.Description, p.Source,
		p.Score, string(p.Status), ingestedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("save posting: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Postgres) MarkScored(ctx context.Context, fingerprint string, score int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE postings SET score = $2, status = 'scored' WHERE fingerprint = $1`,
		fingerprint, score,
	)
	if err != nil {
		return fmt.Errorf("mark scored: %w", err)
	}
	return nil
}

func (s *Postgres) MarkFailed(ctx context.Context, fingerprint string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE postings SET status = 'failed' WHERE fingerprint = $1`,
		fingerprint,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// WeeklyRefresh runs the retention policy in one transaction. The preserved
// and insert sets are computed before the delete, so a re-confirmed record is
// never transiently absent mid-refresh.
func (s *Postgres) WeeklyRefresh(ctx context.Context, batch []model.Posting) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin refresh: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	existing, err := storedURLs(ctx, tx)
	if err != nil {
		return 0, err
	}

	plan := planRefresh(existing, batch, s.now())

	inserted := 0
	for _, p := range plan.insert {
		if p.Status == "" {
			p.Status = model.StatusPending
		}
		ingestedAt := p.IngestedAt
		if ingestedAt.IsZero() {
			ingestedAt = s.now()
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO postings (`+postingColumns+`)
			 SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
			 WHERE NOT EXISTS (
			   SELECT 1 FROM postings WHERE fingerprint = $1
			 )`,
			p.Fingerprint, p.Title, p.Company, p.URL, p.Description, p.Source,
			p.Score, string(p.Status), ingestedAt.UTC(),
		)
		if err != nil {
			return 0, fmt.Errorf("refresh insert: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	keep := make([]string, 0, len(plan.keepURLs))
	for url := range plan.keepURLs {
		keep = append(keep, url)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM postings
		 WHERE ingested_at < $1
		   AND NOT (url = ANY($2))`,
		plan.cutoff.UTC(), keep,
	); err != nil {
		return 0, fmt.Errorf("refresh purge: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit refresh: %v", ErrUnavailable, err)
	}
	return inserted, nil
}

func storedURLs(ctx context.Context, tx pgx.Tx) (map[string]struct{}, error) {
	rows, err := tx.Query(ctx, `SELECT url FROM postings`)
	if err != nil {
		return nil, fmt.Errorf("query stored urls: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		urls[u] = struct{}{}
	}
	return urls, rows.Err()
}

func (s *Postgres) GetPending(ctx context.Context, limit int) ([]model.Posting, error) {
	return s.queryPostings(ctx,
		`SELECT `+postingColumns+` FROM postings
		 WHERE status = 'pending'
		 ORDER BY ingested_at DESC
		 LIMIT $1`, limit)
}

func (s *Postgres) GetByScoreAtLeast(ctx context.Context, threshold, limit int) ([]model.Posting, error) {
	return s.queryPostings(ctx,
		`SELECT `+postingColumns+` FROM postings
		 WHERE score >= $1
		 ORDER BY score DESC, ingested_at DESC
		 LIMIT $2`, threshold, limit)
}

func (s *Postgres) queryPostings(ctx context.Context, query string, args ...any) ([]model.Posting, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query postings: %w", err)
	}
	defer rows.Close()

	var out []model.Posting
	for rows.Next() {
		var p model.Posting
		var status string
		if err := rows.Scan(
			&p.Fingerprint, &p.Title, &p.Company, &p.URL, &p.Description,
			&p.Source, &p.Score, &status, &p.IngestedAt,
		); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		p.Status = model.Status(status)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'pending'),
		        COUNT(*) FILTER (WHERE status = 'scored'),
		        COUNT(*) FILTER (WHERE status = 'failed')
		 FROM postings`,
	).Scan(&st.Total, &st.Pending, &st.Scored, &st.Failed)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}
