package site

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/webchecker/backend/internal/domain/site"
)

// ErrInvalid marks a payload that failed validation. The wrapping message
// carries the offending field.
var ErrInvalid = errors.New("invalid site")

// Input is a site payload as submitted by a client. Optional numeric and
// boolean fields are pointers so an omitted field can fall back to its
// default instead of the JSON zero value.
type Input struct {
	Name           string            `json:"name"`
	URL            string            `json:"url"`
	CheckInterval  *int              `json:"checkInterval"`
	Timeout        *int              `json:"timeout"`
	Thresholds     *ThresholdsInput  `json:"thresholds"`
	QueryParams    []site.QueryParam `json:"queryParams"`
	HealthEndpoint string            `json:"healthEndpoint"`
	Enabled        *bool             `json:"enabled"`
}

type ThresholdsInput struct {
	UptimePercent *int `json:"uptimePercent"`
	MaxLatency    *int `json:"maxLatency"`
	SEOScore      *int `json:"seoScore"`
}

type Usecase struct {
	repo site.Repo
}

func New(repo site.Repo) *Usecase { return &Usecase{repo: repo} }

const (
	minCheckInterval = 60
	maxCheckInterval = 86400
	defCheckInterval = 300

	minTimeout = 5
	maxTimeout = 30
	defTimeout = 10

	maxNameLen           = 255
	maxHealthEndpointLen = 255
	minMaxLatency        = 100
)

// materialize applies defaults and validates an input payload, producing
// the entity to persist. Owner and identity fields are left to the caller.
func materialize(in Input) (*site.Site, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrInvalid, maxNameLen)
	}
	if !strings.HasPrefix(in.URL, "http://") && !strings.HasPrefix(in.URL, "https://") {
		return nil, fmt.Errorf("%w: url must start with http:// or https://", ErrInvalid)
	}

	interval := defCheckInterval
	if in.CheckInterval != nil {
		interval = *in.CheckInterval
	}
	if interval < minCheckInterval || interval > maxCheckInterval {
		return nil, fmt.Errorf("%w: checkInterval must be within %d..%d", ErrInvalid, minCheckInterval, maxCheckInterval)
	}

	timeout := defTimeout
	if in.Timeout != nil {
		timeout = *in.Timeout
	}
	if timeout < minTimeout || timeout > maxTimeout {
		return nil, fmt.Errorf("%w: timeout must be within %d..%d", ErrInvalid, minTimeout, maxTimeout)
	}

	th := site.DefaultThresholds()
	if in.Thresholds != nil {
		if in.Thresholds.UptimePercent != nil {
			th.UptimePercent = *in.Thresholds.UptimePercent
		}
		if in.Thresholds.MaxLatency != nil {
			th.MaxLatency = *in.Thresholds.MaxLatency
		}
		if in.Thresholds.SEOScore != nil {
			th.SEOScore = *in.Thresholds.SEOScore
		}
	}
	if th.UptimePercent < 0 || th.UptimePercent > 100 {
		return nil, fmt.Errorf("%w: thresholds.uptimePercent must be within 0..100", ErrInvalid)
	}
	if th.MaxLatency < minMaxLatency {
		return nil, fmt.Errorf("%w: thresholds.maxLatency must be >= %d", ErrInvalid, minMaxLatency)
	}
	if th.SEOScore < 0 || th.SEOScore > 100 {
		return nil, fmt.Errorf("%w: thresholds.seoScore must be within 0..100", ErrInvalid)
	}

	if len(in.QueryParams) > site.MaxQueryParams {
		return nil, fmt.Errorf("%w: at most %d query parameters allowed", ErrInvalid, site.MaxQueryParams)
	}
	params := make([]site.QueryParam, 0, len(in.QueryParams))
	for _, p := range in.QueryParams {
		if strings.TrimSpace(p.Key) == "" || strings.TrimSpace(p.Value) == "" {
			return nil, fmt.Errorf("%w: query parameters must have non-blank key and value", ErrInvalid)
		}
		params = append(params, p)
	}

	if len(in.HealthEndpoint) > maxHealthEndpointLen {
		return nil, fmt.Errorf("%w: healthEndpoint exceeds %d characters", ErrInvalid, maxHealthEndpointLen)
	}

	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}

	return &site.Site{
		Name:           name,
		URL:            in.URL,
		CheckInterval:  interval,
		Timeout:        timeout,
		Thresholds:     th,
		QueryParams:    params,
		HealthEndpoint: in.HealthEndpoint,
		Enabled:        enabled,
	}, nil
}

func (u *Usecase) Create(ctx context.Context, ownerID string, in Input) (*site.Site, error) {
	s, err := materialize(in)
	if err != nil {
		return nil, err
	}
	s.UserID = ownerID
	if err := u.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *Usecase) Get(ctx context.Context, ownerID string, id int64) (*site.Site, error) {
	return u.repo.GetByOwner(ctx, ownerID, id)
}

func (u *Usecase) List(ctx context.Context, ownerID string, enabledOnly bool) ([]*site.Site, error) {
	return u.repo.ListByOwner(ctx, ownerID, enabledOnly)
}

// Update fully replaces the mutable fields of the site. Identity, owner and
// creation time are preserved by the store.
func (u *Usecase) Update(ctx context.Context, ownerID string, id int64, in Input) (*site.Site, error) {
	s, err := materialize(in)
	if err != nil {
		return nil, err
	}
	s.ID = id
	s.UserID = ownerID
	if err := u.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *Usecase) Delete(ctx context.Context, ownerID string, id int64) error {
	return u.repo.Delete(ctx, ownerID, id)
}

func (u *Usecase) Count(ctx context.Context, ownerID string) (int64, error) {
	return u.repo.CountByOwner(ctx, ownerID)
}
