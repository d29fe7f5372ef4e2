package site

import "time"

// Thresholds are the per-site alerting limits the worker evaluates against.
type Thresholds struct {
	UptimePercent int `json:"uptimePercent"` // 0..100
	MaxLatency    int `json:"maxLatency"`    // ms, >= 100
	SEOScore      int `json:"seoScore"`      // 0..100
}

// DefaultThresholds mirrors the defaults applied when a payload omits them.
func DefaultThresholds() Thresholds {
	return Thresholds{UptimePercent: 99, MaxLatency: 2000, SEOScore: 80}
}

type QueryParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MaxQueryParams bounds the query parameters persisted per site.
const MaxQueryParams = 3

type Site struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	URL            string       `json:"url"`
	CheckInterval  int          `json:"checkInterval"` // seconds, 60..86400
	Timeout        int          `json:"timeout"`       // seconds, 5..30
	Thresholds     Thresholds   `json:"thresholds"`
	QueryParams    []QueryParam `json:"queryParams,omitempty"`
	HealthEndpoint string       `json:"healthEndpoint,omitempty"`
	Enabled        bool         `json:"enabled"`
	UserID         string       `json:"-"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}
