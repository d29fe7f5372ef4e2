package incident

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("incident not found")

type Repo interface {
	Insert(ctx context.Context, i *Incident) error
	ListByOwner(ctx context.Context, userID string, activeOnly bool) ([]*Incident, error)
	ListBySiteAndOwner(ctx context.Context, siteID int64, userID string, activeOnly bool) ([]*Incident, error)
	// Resolve marks the incident RESOLVED and stamps resolved_at, returning
	// the stored row. Resolving an already resolved incident is a no-op.
	Resolve(ctx context.Context, id int64) (*Incident, error)
}
