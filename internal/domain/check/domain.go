package check

import "time"

type Status string

const (
	StatusUp      Status = "UP"
	StatusDown    Status = "DOWN"
	StatusTimeout Status = "TIMEOUT"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUp, StatusDown, StatusTimeout:
		return true
	}
	return false
}

// WorkerOwner is the sentinel owner stamped on results submitted by the
// automated prober rather than a human.
const WorkerOwner = "worker"

// Result is one probe outcome for a site. Immutable once stored.
type Result struct {
	ID           int64     `json:"id"`
	SiteID       int64     `json:"siteId"`
	Timestamp    time.Time `json:"timestamp"`
	Status       Status    `json:"status"`
	ResponseTime int       `json:"responseTime"` // ms
	StatusCode   *int      `json:"statusCode,omitempty"`
	Error        string    `json:"error,omitempty"`
	SEOScore     *int      `json:"seoScore,omitempty"`
	UserID       string    `json:"-"`
}
