package check

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/webchecker/backend/internal/domain/check"
	"github.com/webchecker/backend/internal/domain/outbox"
	"github.com/webchecker/backend/internal/repository/postgres"
)

var ErrInvalid = errors.New("invalid check result")

// recentLimit caps the dashboard feed of latest results per owner.
const recentLimit = 100

type Usecase struct {
	results check.Repo
	outbox  outbox.Repository
	tx      postgres.Transactor
	log     *zap.Logger
	clk     func() time.Time
}

// New builds the check usecase. ob and tx may both be nil when event
// publication is disabled; they must otherwise both be set.
func New(results check.Repo, ob outbox.Repository, tx postgres.Transactor, log *zap.Logger, clk func() time.Time) *Usecase {
	if clk == nil {
		clk = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{results: results, outbox: ob, tx: tx, log: log, clk: clk}
}

func (u *Usecase) Recent(ctx context.Context, ownerID string) ([]*check.Result, error) {
	return u.results.ListRecentByOwner(ctx, ownerID, recentLimit)
}

func (u *Usecase) BySite(ctx context.Context, ownerID string, siteID int64) ([]*check.Result, error) {
	return u.results.ListBySiteAndOwner(ctx, siteID, ownerID)
}

// Uptime returns the percentage of UP results for the (site, owner) pair.
// A site with no results has 0.0 uptime.
func (u *Usecase) Uptime(ctx context.Context, ownerID string, siteID int64) (float64, error) {
	up, total, err := u.results.UptimeCounts(ctx, siteID, ownerID)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0.0, nil
	}
	return float64(up) / float64(total) * 100.0, nil
}

// Ingest stores a result submitted by the prober. The owner is always the
// worker sentinel regardless of the payload, and a missing timestamp is
// replaced with the server receipt time. The referenced site is not checked
// for existence; the prober only probes sites it was handed.
func (u *Usecase) Ingest(ctx context.Context, r *check.Result) (*check.Result, error) {
	if !r.Status.Valid() {
		return nil, fmt.Errorf("%w: status must be UP, DOWN or TIMEOUT", ErrInvalid)
	}
	if r.SiteID <= 0 {
		return nil, fmt.Errorf("%w: siteId is required", ErrInvalid)
	}
	if r.ResponseTime < 0 {
		return nil, fmt.Errorf("%w: responseTime must be >= 0", ErrInvalid)
	}
	if r.SEOScore != nil && (*r.SEOScore < 0 || *r.SEOScore > 100) {
		return nil, fmt.Errorf("%w: seoScore must be within 0..100", ErrInvalid)
	}

	r.ID = 0
	r.UserID = check.WorkerOwner
	if r.Timestamp.IsZero() {
		r.Timestamp = u.clk()
	}

	if u.outbox == nil {
		if err := u.results.Insert(ctx, r); err != nil {
			return nil, fmt.Errorf("insert check result: %w", err)
		}
		return r, nil
	}

	err := u.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.results.Insert(txCtx, r); err != nil {
			return fmt.Errorf("insert check result: %w", err)
		}
		b, _ := json.Marshal(r)
		key := fmt.Sprintf("check:%d:%d", r.SiteID, r.Timestamp.UnixNano())
		if err := u.outbox.Enqueue(txCtx, key, outbox.KindCheckRecorded, b); err != nil {
			return fmt.Errorf("outbox enqueue: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
