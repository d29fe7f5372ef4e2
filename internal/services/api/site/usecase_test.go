package site

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/webchecker/backend/internal/domain/site"
)

type fakeRepo struct {
	nextID int64
	rows   map[int64]*site.Site
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[int64]*site.Site{}}
}

func (f *fakeRepo) Create(_ context.Context, s *site.Site) error {
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByOwner(_ context.Context, userID string, id int64) (*site.Site, error) {
	s, ok := f.rows[id]
	if !ok || s.UserID != userID {
		return nil, site.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) ListByOwner(_ context.Context, userID string, enabledOnly bool) ([]*site.Site, error) {
	var out []*site.Site
	for _, s := range f.rows {
		if s.UserID != userID {
			continue
		}
		if enabledOnly && !s.Enabled {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, s *site.Site) error {
	cur, ok := f.rows[s.ID]
	if !ok || cur.UserID != s.UserID {
		return site.ErrNotFound
	}
	s.CreatedAt = cur.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, userID string, id int64) error {
	s, ok := f.rows[id]
	if !ok || s.UserID != userID {
		return site.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRepo) CountByOwner(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, s := range f.rows {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func TestCreate_Defaults(t *testing.T) {
	uc := New(newFakeRepo())

	s, err := uc.Create(context.Background(), "u1", Input{
		Name: "Example",
		URL:  "https://example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "u1", s.UserID)
	require.True(t, s.Enabled)
	require.Equal(t, 300, s.CheckInterval)
	require.Equal(t, 10, s.Timeout)
	require.Equal(t, site.Thresholds{UptimePercent: 99, MaxLatency: 2000, SEOScore: 80}, s.Thresholds)
	require.NotZero(t, s.ID)
}

func TestCreate_Validation(t *testing.T) {
	uc := New(newFakeRepo())
	ctx := context.Background()

	cases := map[string]Input{
		"empty name":        {URL: "https://a.com"},
		"blank name":        {Name: "   ", URL: "https://a.com"},
		"bad scheme":        {Name: "a", URL: "ftp://a.com"},
		"no scheme":         {Name: "a", URL: "a.com"},
		"interval too low":  {Name: "a", URL: "https://a.com", CheckInterval: intp(30)},
		"interval too high": {Name: "a", URL: "https://a.com", CheckInterval: intp(100000)},
		"timeout too low":   {Name: "a", URL: "https://a.com", Timeout: intp(1)},
		"timeout too high":  {Name: "a", URL: "https://a.com", Timeout: intp(120)},
		"uptime oob": {Name: "a", URL: "https://a.com",
			Thresholds: &ThresholdsInput{UptimePercent: intp(101)}},
		"latency oob": {Name: "a", URL: "https://a.com",
			Thresholds: &ThresholdsInput{MaxLatency: intp(50)}},
		"seo oob": {Name: "a", URL: "https://a.com",
			Thresholds: &ThresholdsInput{SEOScore: intp(-1)}},
		"too many params": {Name: "a", URL: "https://a.com",
			QueryParams: []site.QueryParam{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "c", Value: "3"}, {Key: "d", Value: "4"}}},
		"blank param key": {Name: "a", URL: "https://a.com",
			QueryParams: []site.QueryParam{{Key: " ", Value: "1"}}},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, "u1", in)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestCreate_PartialThresholdOverride(t *testing.T) {
	uc := New(newFakeRepo())

	s, err := uc.Create(context.Background(), "u1", Input{
		Name:       "Example",
		URL:        "https://example.com",
		Thresholds: &ThresholdsInput{MaxLatency: intp(500)},
	})
	require.NoError(t, err)
	require.Equal(t, 500, s.Thresholds.MaxLatency)
	require.Equal(t, 99, s.Thresholds.UptimePercent)
	require.Equal(t, 80, s.Thresholds.SEOScore)
}

func TestGet_OwnershipIsolation(t *testing.T) {
	uc := New(newFakeRepo())
	ctx := context.Background()

	s, err := uc.Create(ctx, "u1", Input{Name: "Example", URL: "https://example.com"})
	require.NoError(t, err)

	got, err := uc.Get(ctx, "u1", s.ID)
	require.NoError(t, err)
	require.Equal(t, s.ID, got.ID)

	_, err = uc.Get(ctx, "u2", s.ID)
	require.ErrorIs(t, err, site.ErrNotFound)
}

func TestUpdate_FullReplacePreservesIdentity(t *testing.T) {
	repo := newFakeRepo()
	uc := New(repo)
	ctx := context.Background()

	s, err := uc.Create(ctx, "u1", Input{Name: "Old", URL: "https://example.com"})
	require.NoError(t, err)

	upd, err := uc.Update(ctx, "u1", s.ID, Input{
		Name:          "New",
		URL:           "https://example.com",
		CheckInterval: intp(600),
		Enabled:       boolp(false),
	})
	require.NoError(t, err)
	require.Equal(t, s.ID, upd.ID)
	require.Equal(t, "u1", upd.UserID)
	require.Equal(t, "New", upd.Name)
	require.Equal(t, 600, upd.CheckInterval)
	require.False(t, upd.Enabled)
	require.Equal(t, s.CreatedAt, upd.CreatedAt)
}

func TestUpdate_ForeignOwner(t *testing.T) {
	uc := New(newFakeRepo())
	ctx := context.Background()

	s, err := uc.Create(ctx, "u1", Input{Name: "Example", URL: "https://example.com"})
	require.NoError(t, err)

	_, err = uc.Update(ctx, "u2", s.ID, Input{Name: "Hijack", URL: "https://example.com"})
	require.ErrorIs(t, err, site.ErrNotFound)
}

func TestDelete_ForeignOwnerLeavesStoreUnchanged(t *testing.T) {
	repo := newFakeRepo()
	uc := New(repo)
	ctx := context.Background()

	s, err := uc.Create(ctx, "u1", Input{Name: "Example", URL: "https://example.com"})
	require.NoError(t, err)

	require.ErrorIs(t, uc.Delete(ctx, "u2", s.ID), site.ErrNotFound)
	require.ErrorIs(t, uc.Delete(ctx, "u1", s.ID+999), site.ErrNotFound)

	n, err := uc.Count(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.NoError(t, uc.Delete(ctx, "u1", s.ID))
	n, err = uc.Count(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestList_EnabledFilter(t *testing.T) {
	uc := New(newFakeRepo())
	ctx := context.Background()

	_, err := uc.Create(ctx, "u1", Input{Name: "On", URL: "https://on.example.com"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "u1", Input{Name: "Off", URL: "https://off.example.com", Enabled: boolp(false)})
	require.NoError(t, err)

	all, err := uc.List(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	enabled, err := uc.List(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	require.Equal(t, "On", enabled[0].Name)
}
