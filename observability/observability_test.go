package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/clinic/component"
	"github.com/kbukum/clinic/logger"
)

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 {
		t.Errorf("defaults = %+v", cfg)
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled ignores rate", Config{SampleRate: 7}, false},
		{"enabled", Config{Enabled: true, SampleRate: 0.5, MetricInterval: 1}, false},
		{"rate above one", Config{Enabled: true, SampleRate: 1.5, MetricInterval: 1}, true},
		{"no interval", Config{Enabled: true, SampleRate: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "ParentBased{root:AlwaysOnSampler"},
		{0, "ParentBased{root:AlwaysOffSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		got := sampler(tt.rate).Description()
		if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
			t.Errorf("sampler(%v) = %s, want prefix %s", tt.rate, got, tt.want)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource(ServiceInfo{Name: "clinic-api", Version: "1.2.3", Environment: "test"})
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	found := map[string]string{}
	for _, kv := range res.Attributes() {
		found[string(kv.Key)] = kv.Value.Emit()
	}
	if found["service.name"] != "clinic-api" || found["service.version"] != "1.2.3" || found["environment"] != "test" {
		t.Errorf("attributes = %v", found)
	}
}

func TestComponent_Disabled(t *testing.T) {
	c := NewComponent(Config{}, ServiceInfo{Name: "clinic-api"}, logger.Nop())
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy || h.Message != "disabled" {
		t.Errorf("health = %+v", h)
	}
	if d := c.Describe(); d.Details != "disabled" {
		t.Errorf("describe = %+v", d)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestComponent_EnabledInstallsProviders(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	c := NewComponent(Config{Enabled: true, Insecure: true, Endpoint: "127.0.0.1:1"},
		ServiceInfo{Name: "clinic-api"}, logger.Nop())
	ctx := context.Background()

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("global tracer provider = %T", otel.GetTracerProvider())
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health = %+v", h)
	}

	// The collector is unreachable, so the flush may fail; shutdown must still return.
	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = c.Stop(shutdownCtx)
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health after stop = %+v", h)
	}
}

func TestStartAndEndSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, ok := StartSpan(context.Background(), "records.create")
	EndSpan(ok, nil)
	_, failed := StartSpan(context.Background(), "records.delete")
	EndSpan(failed, errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	if spans[0].Status().Code != codes.Unset {
		t.Errorf("ok span status = %v", spans[0].Status())
	}
	if spans[1].Status().Code != codes.Error || len(spans[1].Events()) != 1 {
		t.Errorf("failed span status = %v events = %d", spans[1].Status(), len(spans[1].Events()))
	}
}
