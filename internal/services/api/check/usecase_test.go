package check

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/webchecker/backend/internal/domain/check"
	"github.com/webchecker/backend/internal/domain/outbox"
)

type fakeResults struct {
	nextID int64
	rows   []*check.Result
}

func (f *fakeResults) Insert(_ context.Context, r *check.Result) error {
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeResults) ListRecentByOwner(_ context.Context, userID string, limit int) ([]*check.Result, error) {
	var out []*check.Result
	for _, r := range f.rows {
		if r.UserID == userID && len(out) < limit {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeResults) ListBySiteAndOwner(_ context.Context, siteID int64, userID string) ([]*check.Result, error) {
	var out []*check.Result
	for _, r := range f.rows {
		if r.SiteID == siteID && r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeResults) UptimeCounts(_ context.Context, siteID int64, userID string) (up, total int64, err error) {
	for _, r := range f.rows {
		if r.SiteID != siteID || r.UserID != userID {
			continue
		}
		total++
		if r.Status == check.StatusUp {
			up++
		}
	}
	return up, total, nil
}

type fakeOutbox struct {
	enqueued []outbox.Kind
	payloads [][]byte
}

func (f *fakeOutbox) Enqueue(_ context.Context, _ string, kind outbox.Kind, data []byte) error {
	f.enqueued = append(f.enqueued, kind)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeOutbox) PickBatch(context.Context, int, time.Duration) ([]outbox.Message, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSuccess(context.Context, []string) error { return nil }

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func seed(f *fakeResults, siteID int64, owner string, statuses ...check.Status) {
	for _, st := range statuses {
		_ = f.Insert(context.Background(), &check.Result{
			SiteID: siteID, UserID: owner, Status: st, Timestamp: time.Now().UTC(),
		})
	}
}

func TestUptime(t *testing.T) {
	repo := &fakeResults{}
	uc := New(repo, nil, nil, zap.NewNop(), nil)
	ctx := context.Background()

	// no results at all
	pct, err := uc.Uptime(ctx, "u1", 1)
	require.NoError(t, err)
	require.Equal(t, 0.0, pct)

	// 3 UP, 1 DOWN
	seed(repo, 1, "u1", check.StatusUp, check.StatusUp, check.StatusUp, check.StatusDown)
	pct, err = uc.Uptime(ctx, "u1", 1)
	require.NoError(t, err)
	require.Equal(t, 75.0, pct)

	// all failures
	seed(repo, 2, "u1", check.StatusDown, check.StatusTimeout)
	pct, err = uc.Uptime(ctx, "u1", 2)
	require.NoError(t, err)
	require.Equal(t, 0.0, pct)

	// another owner's results are invisible
	pct, err = uc.Uptime(ctx, "u2", 1)
	require.NoError(t, err)
	require.Equal(t, 0.0, pct)
}

func TestIngest_StampsWorkerOwner(t *testing.T) {
	repo := &fakeResults{}
	uc := New(repo, nil, nil, zap.NewNop(), nil)

	stored, err := uc.Ingest(context.Background(), &check.Result{
		SiteID:       7,
		Status:       check.StatusUp,
		ResponseTime: 120,
		UserID:       "attacker", // must be overwritten
	})
	require.NoError(t, err)
	require.Equal(t, check.WorkerOwner, stored.UserID)
	require.NotZero(t, stored.ID)
	require.False(t, stored.Timestamp.IsZero())

	require.Len(t, repo.rows, 1)
	require.Equal(t, check.WorkerOwner, repo.rows[0].UserID)
}

func TestIngest_DefaultsTimestamp(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	uc := New(&fakeResults{}, nil, nil, zap.NewNop(), func() time.Time { return fixed })

	stored, err := uc.Ingest(context.Background(), &check.Result{
		SiteID: 1, Status: check.StatusDown,
	})
	require.NoError(t, err)
	require.Equal(t, fixed, stored.Timestamp)

	supplied := fixed.Add(-time.Hour)
	stored, err = uc.Ingest(context.Background(), &check.Result{
		SiteID: 1, Status: check.StatusDown, Timestamp: supplied,
	})
	require.NoError(t, err)
	require.Equal(t, supplied, stored.Timestamp)
}

func TestIngest_Validation(t *testing.T) {
	uc := New(&fakeResults{}, nil, nil, zap.NewNop(), nil)
	ctx := context.Background()

	bad := []*check.Result{
		{SiteID: 1, Status: "WEIRD"},
		{SiteID: 0, Status: check.StatusUp},
		{SiteID: 1, Status: check.StatusUp, ResponseTime: -1},
		{SiteID: 1, Status: check.StatusUp, SEOScore: intp(101)},
	}
	for _, r := range bad {
		_, err := uc.Ingest(ctx, r)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestIngest_EnqueuesOutboxEvent(t *testing.T) {
	repo := &fakeResults{}
	ob := &fakeOutbox{}
	uc := New(repo, ob, fakeTx{}, zap.NewNop(), nil)

	stored, err := uc.Ingest(context.Background(), &check.Result{
		SiteID: 3, Status: check.StatusUp, ResponseTime: 80,
	})
	require.NoError(t, err)

	require.Len(t, ob.enqueued, 1)
	require.Equal(t, outbox.KindCheckRecorded, ob.enqueued[0])

	var payload check.Result
	require.NoError(t, json.Unmarshal(ob.payloads[0], &payload))
	require.Equal(t, stored.SiteID, payload.SiteID)
	require.Equal(t, stored.Status, payload.Status)
}

func TestRecent_ScopedToOwner(t *testing.T) {
	repo := &fakeResults{}
	uc := New(repo, nil, nil, zap.NewNop(), nil)
	ctx := context.Background()

	seed(repo, 1, "u1", check.StatusUp)
	seed(repo, 1, check.WorkerOwner, check.StatusUp, check.StatusDown)

	mine, err := uc.Recent(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	workers, err := uc.Recent(ctx, check.WorkerOwner)
	require.NoError(t, err)
	require.Len(t, workers, 2)
}

func intp(v int) *int { return &v }
