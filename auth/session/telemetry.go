package session

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/clinic/auth"
)

const instrumentationName = "github.com/kbukum/clinic/auth/session"

// Result attribute values.
const (
	resultOK      = "ok"
	resultDenied  = "denied"
	resultFailure = "error"
)

type telemetry struct {
	tracer      trace.Tracer
	logins      metric.Int64Counter
	resolutions metric.Int64Counter
	revocations metric.Int64Counter
}

// newTelemetry binds to the global providers, which are no-ops until the
// observability component installs real ones.
func newTelemetry() *telemetry {
	meter := otel.Meter(instrumentationName)
	return &telemetry{
		tracer:      otel.Tracer(instrumentationName),
		logins:      counter(meter, "clinic.auth.logins", "Login attempts"),
		resolutions: counter(meter, "clinic.auth.resolutions", "Bearer token resolutions"),
		revocations: counter(meter, "clinic.auth.revocations", "Session revocations"),
	}
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

func (t *telemetry) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name)
}

func (t *telemetry) record(ctx context.Context, c metric.Int64Counter, span trace.Span, err error) {
	result := resultOf(err)
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	span.SetAttributes(attribute.String("result", result))
	if result == resultFailure {
		span.RecordError(err)
	}
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidOrExpiredCredential):
		return resultDenied
	default:
		return resultFailure
	}
}
