package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/webchecker/backend/internal/domain/check"
)

var _ check.Repo = (*CheckRepoImpl)(nil)

type CheckRepoImpl struct {
	db *DB
}

func NewCheckRepo(db *DB) *CheckRepoImpl { return &CheckRepoImpl{db: db} }

const (
	qResultInsert = `
INSERT INTO check_results (site_id, ts, status, response_time_ms, status_code, error, seo_score, user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id;
`

	qResultsByOwner = `
SELECT id, site_id, ts, status, response_time_ms, status_code, error, seo_score, user_id
FROM check_results
WHERE user_id = $1
ORDER BY ts DESC
LIMIT $2;
`

	qResultsBySite = `
SELECT id, site_id, ts, status, response_time_ms, status_code, error, seo_score, user_id
FROM check_results
WHERE site_id = $1 AND user_id = $2
ORDER BY ts DESC;
`

	qUptimeCounts = `
SELECT COUNT(*) FILTER (WHERE status = 'UP'), COUNT(*)
FROM check_results
WHERE site_id = $1 AND user_id = $2;
`
)

func scanResult(row pgx.Row, r *check.Result) error {
	var (
		status  string
		errText *string
	)
	if err := row.Scan(
		&r.ID,
		&r.SiteID,
		&r.Timestamp,
		&status,
		&r.ResponseTime,
		&r.StatusCode,
		&errText,
		&r.SEOScore,
		&r.UserID,
	); err != nil {
		return fmt.Errorf("scan check result: %w", err)
	}
	r.Status = check.Status(status)
	if errText != nil {
		r.Error = *errText
	}
	return nil
}

// Insert participates in a surrounding transaction when one is present in ctx,
// so a result and its outbox event commit atomically.
func (r *CheckRepoImpl) Insert(ctx context.Context, res *check.Result) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	return eq.QueryRow(ctx, qResultInsert,
		res.SiteID, res.Timestamp, string(res.Status), res.ResponseTime,
		res.StatusCode, nullable(res.Error), res.SEOScore, res.UserID,
	).Scan(&res.ID)
}

func (r *CheckRepoImpl) ListRecentByOwner(ctx context.Context, userID string, limit int) ([]*check.Result, error) {
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qResultsByOwner, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query check results: %w", err)
	}
	defer rows.Close()

	return collectResults(rows)
}

func (r *CheckRepoImpl) ListBySiteAndOwner(ctx context.Context, siteID int64, userID string) ([]*check.Result, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qResultsBySite, siteID, userID)
	if err != nil {
		return nil, fmt.Errorf("query check results: %w", err)
	}
	defer rows.Close()

	return collectResults(rows)
}

func (r *CheckRepoImpl) UptimeCounts(ctx context.Context, siteID int64, userID string) (up, total int64, err error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qUptimeCounts, siteID, userID).Scan(&up, &total); err != nil {
		return 0, 0, fmt.Errorf("uptime counts: %w", err)
	}
	return up, total, nil
}

func collectResults(rows pgx.Rows) ([]*check.Result, error) {
	var out []*check.Result
	for rows.Next() {
		var res check.Result
		if err := scanResult(rows, &res); err != nil {
			return nil, err
		}
		out = append(out, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
