package incident

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/webchecker/backend/internal/domain/incident"
	"github.com/webchecker/backend/internal/domain/outbox"
	"github.com/webchecker/backend/internal/repository/postgres"
)

var ErrInvalid = errors.New("invalid incident")

// WorkerInput is the incident payload posted by the prober when its
// detection logic trips a threshold. The owner comes with the payload: the
// scheduler hands the prober the site together with its owner, and the
// worker path is trusted-network only.
type WorkerInput struct {
	SiteID  int64         `json:"siteId"`
	Type    incident.Type `json:"type"`
	Message string        `json:"message"`
	UserID  string        `json:"userId"`
}

type Usecase struct {
	incidents incident.Repo
	outbox    outbox.Repository
	tx        postgres.Transactor
	log       *zap.Logger
	clk       func() time.Time
}

func New(incidents incident.Repo, ob outbox.Repository, tx postgres.Transactor, log *zap.Logger, clk func() time.Time) *Usecase {
	if clk == nil {
		clk = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{incidents: incidents, outbox: ob, tx: tx, log: log, clk: clk}
}

func (u *Usecase) List(ctx context.Context, ownerID string, activeOnly bool) ([]*incident.Incident, error) {
	return u.incidents.ListByOwner(ctx, ownerID, activeOnly)
}

func (u *Usecase) BySite(ctx context.Context, ownerID string, siteID int64, activeOnly bool) ([]*incident.Incident, error) {
	return u.incidents.ListBySiteAndOwner(ctx, siteID, ownerID, activeOnly)
}

// Open records a new ACTIVE incident detected by the prober. StartedAt is
// the server receipt time.
func (u *Usecase) Open(ctx context.Context, in WorkerInput) (*incident.Incident, error) {
	if in.SiteID <= 0 {
		return nil, fmt.Errorf("%w: siteId is required", ErrInvalid)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown incident type", ErrInvalid)
	}
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalid)
	}

	inc := &incident.Incident{
		SiteID:    in.SiteID,
		Type:      in.Type,
		Status:    incident.StateActive,
		StartedAt: u.clk(),
		Message:   in.Message,
		UserID:    in.UserID,
	}

	if u.outbox == nil {
		if err := u.incidents.Insert(ctx, inc); err != nil {
			return nil, fmt.Errorf("insert incident: %w", err)
		}
		return inc, nil
	}

	err := u.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.incidents.Insert(txCtx, inc); err != nil {
			return fmt.Errorf("insert incident: %w", err)
		}
		b, _ := json.Marshal(inc)
		key := fmt.Sprintf("incident:open:%d:%d", inc.SiteID, inc.StartedAt.UnixNano())
		if err := u.outbox.Enqueue(txCtx, key, outbox.KindIncidentOpened, b); err != nil {
			return fmt.Errorf("outbox enqueue: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inc, nil
}

// Resolve marks the incident RESOLVED. Resolving an already resolved
// incident returns the stored row unchanged.
func (u *Usecase) Resolve(ctx context.Context, id int64) (*incident.Incident, error) {
	if u.outbox == nil {
		return u.incidents.Resolve(ctx, id)
	}

	var inc *incident.Incident
	err := u.tx.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		inc, err = u.incidents.Resolve(txCtx, id)
		if err != nil {
			return err
		}
		b, _ := json.Marshal(inc)
		key := fmt.Sprintf("incident:resolve:%d:%d", inc.ID, u.clk().UnixNano())
		if err := u.outbox.Enqueue(txCtx, key, outbox.KindIncidentResolved, b); err != nil {
			return fmt.Errorf("outbox enqueue: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inc, nil
}
