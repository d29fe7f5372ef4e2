package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/webchecker/backend/internal/domain/site"
)

var _ site.Repo = (*SiteRepoImpl)(nil)

type SiteRepoImpl struct {
	db *DB
}

func NewSiteRepo(db *DB) *SiteRepoImpl { return &SiteRepoImpl{db: db} }

const (
	qSiteInsert = `
INSERT INTO sites (name, url, check_interval, timeout, uptime_percent, max_latency, seo_score,
                   health_endpoint, enabled, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
RETURNING id, created_at, updated_at;
`

	qSiteByOwner = `
SELECT id, name, url, check_interval, timeout, uptime_percent, max_latency, seo_score,
       health_endpoint, enabled, user_id, created_at, updated_at
FROM sites
WHERE user_id = $1 AND id = $2;
`

	qSitesByOwner = `
SELECT id, name, url, check_interval, timeout, uptime_percent, max_latency, seo_score,
       health_endpoint, enabled, user_id, created_at, updated_at
FROM sites
WHERE user_id = $1 AND ($2 = FALSE OR enabled = TRUE)
ORDER BY created_at DESC;
`

	qSiteUpdate = `
UPDATE sites
SET name = $3, url = $4, check_interval = $5, timeout = $6,
    uptime_percent = $7, max_latency = $8, seo_score = $9,
    health_endpoint = $10, enabled = $11,
    updated_at = NOW()
WHERE user_id = $1 AND id = $2
RETURNING created_at, updated_at;
`

	qSiteDelete = `DELETE FROM sites WHERE user_id = $1 AND id = $2;`

	qSiteCount = `SELECT COUNT(*) FROM sites WHERE user_id = $1;`

	qParamsDelete = `DELETE FROM site_query_params WHERE site_id = $1;`

	qParamInsert = `INSERT INTO site_query_params (site_id, param_key, param_value) VALUES ($1, $2, $3);`

	qParamsBySites = `
SELECT site_id, param_key, param_value
FROM site_query_params
WHERE site_id = ANY($1)
ORDER BY site_id, param_key;
`
)

func scanSite(row pgx.Row, s *site.Site) error {
	var healthEndpoint *string
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.URL,
		&s.CheckInterval,
		&s.Timeout,
		&s.Thresholds.UptimePercent,
		&s.Thresholds.MaxLatency,
		&s.Thresholds.SEOScore,
		&healthEndpoint,
		&s.Enabled,
		&s.UserID,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return site.ErrNotFound
		}
		return fmt.Errorf("scan site: %w", err)
	}
	if healthEndpoint != nil {
		s.HealthEndpoint = *healthEndpoint
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *SiteRepoImpl) Create(ctx context.Context, s *site.Site) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, qSiteInsert,
		s.Name, s.URL, s.CheckInterval, s.Timeout,
		s.Thresholds.UptimePercent, s.Thresholds.MaxLatency, s.Thresholds.SEOScore,
		nullable(s.HealthEndpoint), s.Enabled, s.UserID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("insert site: %w", err)
	}

	for _, p := range s.QueryParams {
		if _, err := tx.Exec(ctx, qParamInsert, s.ID, p.Key, p.Value); err != nil {
			return fmt.Errorf("insert query param: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SiteRepoImpl) GetByOwner(ctx context.Context, userID string, id int64) (*site.Site, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var s site.Site
	if err := scanSite(r.db.Pool.QueryRow(ctx, qSiteByOwner, userID, id), &s); err != nil {
		return nil, err
	}
	if err := r.loadParams(ctx, []*site.Site{&s}); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SiteRepoImpl) ListByOwner(ctx context.Context, userID string, enabledOnly bool) ([]*site.Site, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qSitesByOwner, userID, enabledOnly)
	if err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}
	defer rows.Close()

	var out []*site.Site
	for rows.Next() {
		var s site.Site
		if err := scanSite(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if err := r.loadParams(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SiteRepoImpl) Update(ctx context.Context, s *site.Site) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, qSiteUpdate,
		s.UserID, s.ID,
		s.Name, s.URL, s.CheckInterval, s.Timeout,
		s.Thresholds.UptimePercent, s.Thresholds.MaxLatency, s.Thresholds.SEOScore,
		nullable(s.HealthEndpoint), s.Enabled,
	).Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return site.ErrNotFound
		}
		return fmt.Errorf("update site: %w", err)
	}

	if _, err := tx.Exec(ctx, qParamsDelete, s.ID); err != nil {
		return fmt.Errorf("delete query params: %w", err)
	}
	for _, p := range s.QueryParams {
		if _, err := tx.Exec(ctx, qParamInsert, s.ID, p.Key, p.Value); err != nil {
			return fmt.Errorf("insert query param: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SiteRepoImpl) Delete(ctx context.Context, userID string, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qSiteDelete, userID, id)
	if err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return site.ErrNotFound
	}
	return nil
}

func (r *SiteRepoImpl) CountByOwner(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.db.Pool.QueryRow(ctx, qSiteCount, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sites: %w", err)
	}
	return n, nil
}

func (r *SiteRepoImpl) loadParams(ctx context.Context, sites []*site.Site) error {
	if len(sites) == 0 {
		return nil
	}
	byID := make(map[int64]*site.Site, len(sites))
	ids := make([]int64, 0, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	rows, err := r.db.Pool.Query(ctx, qParamsBySites, ids)
	if err != nil {
		return fmt.Errorf("query params: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			siteID int64
			p      site.QueryParam
		)
		if err := rows.Scan(&siteID, &p.Key, &p.Value); err != nil {
			return fmt.Errorf("scan param: %w", err)
		}
		if s, ok := byID[siteID]; ok {
			s.QueryParams = append(s.QueryParams, p)
		}
	}
	return rows.Err()
}
