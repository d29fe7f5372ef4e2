package check

import "context"

type Repo interface {
	Insert(ctx context.Context, r *Result) error
	ListRecentByOwner(ctx context.Context, userID string, limit int) ([]*Result, error)
	ListBySiteAndOwner(ctx context.Context, siteID int64, userID string) ([]*Result, error)
	// UptimeCounts returns the number of UP results and the total number of
	// results for the (site, owner) pair.
	UptimeCounts(ctx context.Context, siteID int64, userID string) (up, total int64, err error)
}
