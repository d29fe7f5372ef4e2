package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"

	"github.com/webchecker/backend/internal/domain/check"
	"github.com/webchecker/backend/internal/domain/events"
	"github.com/webchecker/backend/internal/domain/incident"
	"github.com/webchecker/backend/internal/domain/outbox"
	"github.com/webchecker/backend/internal/obs/retry"
)

var (
	outboxHandlerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_handler_latency_seconds",
		Help:    "Latency of outbox handlers (publish, http, etc.)",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	outboxHandlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_handler_errors_total",
		Help: "Errors in outbox handlers (after retries).",
	}, []string{"kind"})
)

func instrument(kind string, h outbox.KindHandler, pol retry.Policy) outbox.KindHandler {
	tr := otel.Tracer("outbox.handler")
	if pol.Name == "" {
		pol.Name = "outbox_" + kind
	}
	return func(ctx context.Context, data []byte) error {
		ctx, span := tr.Start(ctx, "outbox.handle")
		defer span.End()

		start := time.Now()
		err := retry.Do(ctx, func() error { return h(ctx, data) }, pol)
		outboxHandlerLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			outboxHandlerErrors.WithLabelValues(kind).Inc()
		}
		return err
	}
}

// MakeGlobalOutboxHandler routes stored outbox messages to the event
// publisher. Message data is the JSON form of the domain object.
func MakeGlobalOutboxHandler(pub events.MonitorEvents, pol retry.Policy) outbox.GlobalHandler {
	return func(kind outbox.Kind) (outbox.KindHandler, error) {
		switch kind {
		case outbox.KindCheckRecorded:
			base := func(ctx context.Context, data []byte) error {
				var r check.Result
				if err := json.Unmarshal(data, &r); err != nil {
					return fmt.Errorf("unmarshal check-recorded payload: %w", err)
				}
				return pub.PublishCheckRecorded(ctx, &r)
			}
			return instrument("check_recorded", base, pol), nil
		case outbox.KindIncidentOpened:
			base := func(ctx context.Context, data []byte) error {
				var i incident.Incident
				if err := json.Unmarshal(data, &i); err != nil {
					return fmt.Errorf("unmarshal incident-opened payload: %w", err)
				}
				return pub.PublishIncidentOpened(ctx, &i)
			}
			return instrument("incident_opened", base, pol), nil
		case outbox.KindIncidentResolved:
			base := func(ctx context.Context, data []byte) error {
				var i incident.Incident
				if err := json.Unmarshal(data, &i); err != nil {
					return fmt.Errorf("unmarshal incident-resolved payload: %w", err)
				}
				return pub.PublishIncidentResolved(ctx, &i)
			}
			return instrument("incident_resolved", base, pol), nil
		default:
			return nil, fmt.Errorf("unsupported outbox kind: %d", kind)
		}
	}
}
