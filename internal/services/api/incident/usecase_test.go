package incident

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/webchecker/backend/internal/domain/incident"
	"github.com/webchecker/backend/internal/domain/outbox"
)

type fakeIncidents struct {
	nextID int64
	rows   map[int64]*incident.Incident
}

func newFakeIncidents() *fakeIncidents {
	return &fakeIncidents{rows: map[int64]*incident.Incident{}}
}

func (f *fakeIncidents) Insert(_ context.Context, i *incident.Incident) error {
	f.nextID++
	i.ID = f.nextID
	cp := *i
	f.rows[i.ID] = &cp
	return nil
}

func (f *fakeIncidents) ListByOwner(_ context.Context, userID string, activeOnly bool) ([]*incident.Incident, error) {
	var out []*incident.Incident
	for _, i := range f.rows {
		if i.UserID != userID {
			continue
		}
		if activeOnly && i.Status != incident.StateActive {
			continue
		}
		cp := *i
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeIncidents) ListBySiteAndOwner(_ context.Context, siteID int64, userID string, activeOnly bool) ([]*incident.Incident, error) {
	var out []*incident.Incident
	for _, i := range f.rows {
		if i.SiteID != siteID || i.UserID != userID {
			continue
		}
		if activeOnly && i.Status != incident.StateActive {
			continue
		}
		cp := *i
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeIncidents) Resolve(_ context.Context, id int64) (*incident.Incident, error) {
	i, ok := f.rows[id]
	if !ok {
		return nil, incident.ErrNotFound
	}
	if i.Status != incident.StateResolved {
		i.Status = incident.StateResolved
		now := time.Now().UTC()
		i.ResolvedAt = &now
	}
	cp := *i
	return &cp, nil
}

type fakeOutbox struct {
	enqueued []outbox.Kind
}

func (f *fakeOutbox) Enqueue(_ context.Context, _ string, kind outbox.Kind, _ []byte) error {
	f.enqueued = append(f.enqueued, kind)
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

func TestOpen(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	uc := New(newFakeIncidents(), nil, nil, zap.NewNop(), func() time.Time { return fixed })

	inc, err := uc.Open(context.Background(), WorkerInput{
		SiteID: 5, Type: incident.TypePageDown, Message: "503 from probe", UserID: "u1",
	})
	require.NoError(t, err)
	require.NotZero(t, inc.ID)
	require.Equal(t, incident.StateActive, inc.Status)
	require.Equal(t, fixed, inc.StartedAt)
	require.Equal(t, "u1", inc.UserID)
	require.Nil(t, inc.ResolvedAt)
}

func TestOpen_Validation(t *testing.T) {
	uc := New(newFakeIncidents(), nil, nil, zap.NewNop(), nil)
	ctx := context.Background()

	bad := []WorkerInput{
		{SiteID: 0, Type: incident.TypePageDown, UserID: "u1"},
		{SiteID: 1, Type: "NOT_A_TYPE", UserID: "u1"},
		{SiteID: 1, Type: incident.TypePageDown, UserID: ""},
	}
	for _, in := range bad {
		_, err := uc.Open(ctx, in)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	repo := newFakeIncidents()
	uc := New(repo, nil, nil, zap.NewNop(), nil)
	ctx := context.Background()

	opened, err := uc.Open(ctx, WorkerInput{SiteID: 1, Type: incident.TypeHealthFail, UserID: "u1"})
	require.NoError(t, err)

	first, err := uc.Resolve(ctx, opened.ID)
	require.NoError(t, err)
	require.Equal(t, incident.StateResolved, first.Status)
	require.NotNil(t, first.ResolvedAt)

	second, err := uc.Resolve(ctx, opened.ID)
	require.NoError(t, err)
	require.Equal(t, first.ResolvedAt, second.ResolvedAt)

	_, err = uc.Resolve(ctx, opened.ID+99)
	require.ErrorIs(t, err, incident.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	repo := newFakeIncidents()
	uc := New(repo, nil, nil, zap.NewNop(), nil)
	ctx := context.Background()

	a, err := uc.Open(ctx, WorkerInput{SiteID: 1, Type: incident.TypePageDown, UserID: "u1"})
	require.NoError(t, err)
	_, err = uc.Open(ctx, WorkerInput{SiteID: 2, Type: incident.TypeSlow3G, UserID: "u1"})
	require.NoError(t, err)
	_, err = uc.Open(ctx, WorkerInput{SiteID: 1, Type: incident.TypeSEODrop, UserID: "u2"})
	require.NoError(t, err)

	_, err = uc.Resolve(ctx, a.ID)
	require.NoError(t, err)

	all, err := uc.List(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	active, err := uc.List(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, active, 1)

	site1, err := uc.BySite(ctx, "u1", 1, false)
	require.NoError(t, err)
	require.Len(t, site1, 1)

	site1Active, err := uc.BySite(ctx, "u1", 1, true)
	require.NoError(t, err)
	require.Empty(t, site1Active)

	foreign, err := uc.BySite(ctx, "u2", 2, false)
	require.NoError(t, err)
	require.Empty(t, foreign)
}

func TestOpenAndResolve_EnqueueEvents(t *testing.T) {
	ob := &fakeOutbox{}
	uc := New(newFakeIncidents(), ob, fakeTx{}, zap.NewNop(), nil)
	ctx := context.Background()

	opened, err := uc.Open(ctx, WorkerInput{SiteID: 1, Type: incident.TypePageDown, UserID: "u1"})
	require.NoError(t, err)
	_, err = uc.Resolve(ctx, opened.ID)
	require.NoError(t, err)

	require.Equal(t, []outbox.Kind{outbox.KindIncidentOpened, outbox.KindIncidentResolved}, ob.enqueued)
}
