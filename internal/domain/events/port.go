package events

import (
	"context"

	"github.com/webchecker/backend/internal/domain/check"
	"github.com/webchecker/backend/internal/domain/incident"
)

// MonitorEvents publishes notable monitoring facts to the event stream so
// downstream consumers (alerting, dashboards) can react without polling.
type MonitorEvents interface {
	PublishCheckRecorded(ctx context.Context, r *check.Result) error
	PublishIncidentOpened(ctx context.Context, i *incident.Incident) error
	PublishIncidentResolved(ctx context.Context, i *incident.Incident) error
}
