package kafka

import (
	"context"
	"time"

	"github.com/webchecker/backend/internal/domain/check"
	"github.com/webchecker/backend/internal/domain/events"
	"github.com/webchecker/backend/internal/domain/incident"
)

// MonitorEventsKafka publishes monitoring events as JSON, keyed by site id so
// events for one site stay ordered within a partition.
type MonitorEventsKafka struct {
	p *Producer
}

func NewMonitorEventsKafka(p *Producer) *MonitorEventsKafka { return &MonitorEventsKafka{p: p} }

var _ events.MonitorEvents = (*MonitorEventsKafka)(nil)

type checkRecordedEvent struct {
	Event        string    `json:"event"`
	SiteID       int64     `json:"siteId"`
	Status       string    `json:"status"`
	ResponseTime int       `json:"responseTime"`
	At           time.Time `json:"at"`
}

type incidentEvent struct {
	Event      string     `json:"event"`
	IncidentID int64      `json:"incidentId"`
	SiteID     int64      `json:"siteId"`
	Type       string     `json:"type"`
	StartedAt  time.Time  `json:"startedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

func (e *MonitorEventsKafka) PublishCheckRecorded(ctx context.Context, r *check.Result) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(r.SiteID), checkRecordedEvent{
		Event:        "check.recorded",
		SiteID:       r.SiteID,
		Status:       string(r.Status),
		ResponseTime: r.ResponseTime,
		At:           r.Timestamp,
	})
}

func (e *MonitorEventsKafka) PublishIncidentOpened(ctx context.Context, i *incident.Incident) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(i.SiteID), incidentEvent{
		Event:      "incident.opened",
		IncidentID: i.ID,
		SiteID:     i.SiteID,
		Type:       string(i.Type),
		StartedAt:  i.StartedAt,
	})
}

func (e *MonitorEventsKafka) PublishIncidentResolved(ctx context.Context, i *incident.Incident) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(i.SiteID), incidentEvent{
		Event:      "incident.resolved",
		IncidentID: i.ID,
		SiteID:     i.SiteID,
		Type:       string(i.Type),
		StartedAt:  i.StartedAt,
		ResolvedAt: i.ResolvedAt,
	})
}
