package incident

import "time"

type Type string

const (
	TypePageDown   Type = "PAGE_DOWN"
	TypeHealthFail Type = "HEALTH_FAIL"
	TypeSlow3G     Type = "SLOW_3G"
	TypeSlow4G     Type = "SLOW_4G"
	TypeSEODrop    Type = "SEO_DROP"
)

func (t Type) Valid() bool {
	switch t {
	case TypePageDown, TypeHealthFail, TypeSlow3G, TypeSlow4G, TypeSEODrop:
		return true
	}
	return false
}

type State string

const (
	StateActive   State = "ACTIVE"
	StateResolved State = "RESOLVED"
)

// Incident is a detected anomaly period for a site. Detection lives in the
// external worker; this service only stores and queries.
// ResolvedAt is set iff Status is RESOLVED.
type Incident struct {
	ID         int64      `json:"id"`
	SiteID     int64      `json:"siteId"`
	Type       Type       `json:"type"`
	Status     State      `json:"status"`
	StartedAt  time.Time  `json:"startedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	Message    string     `json:"message,omitempty"`
	UserID     string     `json:"-"`
}
