package site

import (
	"context"
	"errors"
)

// ErrNotFound covers both a genuinely missing site and a site owned by a
// different user. Callers must not be able to tell the two apart.
var ErrNotFound = errors.New("site not found")

// Repo is the owner-scoped site store. Every read and write carries the
// owning user id; a row that exists under another owner is indistinguishable
// from a missing one (both surface as not-found).
type Repo interface {
	Create(ctx context.Context, s *Site) error
	GetByOwner(ctx context.Context, userID string, id int64) (*Site, error)
	ListByOwner(ctx context.Context, userID string, enabledOnly bool) ([]*Site, error)
	Update(ctx context.Context, s *Site) error
	Delete(ctx context.Context, userID string, id int64) error
	CountByOwner(ctx context.Context, userID string) (int64, error)
}
