package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/webchecker/backend/internal/domain/incident"
)

var _ incident.Repo = (*IncidentRepoImpl)(nil)

type IncidentRepoImpl struct {
	db *DB
}

func NewIncidentRepo(db *DB) *IncidentRepoImpl { return &IncidentRepoImpl{db: db} }

const (
	qIncidentInsert = `
INSERT INTO incidents (site_id, type, status, started_at, message, user_id)
VALUES ($1, $2, 'ACTIVE', $3, $4, $5)
RETURNING id;
`

	qIncidentsByOwner = `
SELECT id, site_id, type, status, started_at, resolved_at, message, user_id
FROM incidents
WHERE user_id = $1 AND ($2 = FALSE OR status = 'ACTIVE')
ORDER BY started_at DESC;
`

	qIncidentsBySite = `
SELECT id, site_id, type, status, started_at, resolved_at, message, user_id
FROM incidents
WHERE site_id = $1 AND user_id = $2 AND ($3 = FALSE OR status = 'ACTIVE')
ORDER BY started_at DESC;
`

	qIncidentResolve = `
UPDATE incidents
SET status      = 'RESOLVED',
    resolved_at = COALESCE(resolved_at, NOW())
WHERE id = $1
RETURNING id, site_id, type, status, started_at, resolved_at, message, user_id;
`
)

func scanIncident(row pgx.Row, i *incident.Incident) error {
	var (
		typ     string
		status  string
		message *string
	)
	if err := row.Scan(
		&i.ID,
		&i.SiteID,
		&typ,
		&status,
		&i.StartedAt,
		&i.ResolvedAt,
		&message,
		&i.UserID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return incident.ErrNotFound
		}
		return fmt.Errorf("scan incident: %w", err)
	}
	i.Type = incident.Type(typ)
	i.Status = incident.State(status)
	if message != nil {
		i.Message = *message
	}
	return nil
}

// Insert participates in a surrounding transaction when one is present in ctx.
func (r *IncidentRepoImpl) Insert(ctx context.Context, inc *incident.Incident) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	return eq.QueryRow(ctx, qIncidentInsert,
		inc.SiteID, string(inc.Type), inc.StartedAt, nullable(inc.Message), inc.UserID,
	).Scan(&inc.ID)
}

func (r *IncidentRepoImpl) ListByOwner(ctx context.Context, userID string, activeOnly bool) ([]*incident.Incident, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qIncidentsByOwner, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	return collectIncidents(rows)
}

func (r *IncidentRepoImpl) ListBySiteAndOwner(ctx context.Context, siteID int64, userID string, activeOnly bool) ([]*incident.Incident, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qIncidentsBySite, siteID, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	return collectIncidents(rows)
}

func (r *IncidentRepoImpl) Resolve(ctx context.Context, id int64) (*incident.Incident, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	var inc incident.Incident
	if err := scanIncident(eq.QueryRow(ctx, qIncidentResolve, id), &inc); err != nil {
		return nil, err
	}
	return &inc, nil
}

func collectIncidents(rows pgx.Rows) ([]*incident.Incident, error) {
	var out []*incident.Incident
	for rows.Next() {
		var inc incident.Incident
		if err := scanIncident(rows, &inc); err != nil {
			return nil, err
		}
		out = append(out, &inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
