package server_test

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kbukum/clinic/component"
	apperrors "github.com/kbukum/clinic/errors"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/security"
	"github.com/kbukum/clinic/security/tlstest"
	"github.com/kbukum/clinic/server"
	"github.com/kbukum/clinic/server/endpoint"
	"github.com/kbukum/clinic/server/middleware"
)

func newServer(t *testing.T, checker endpoint.HealthChecker) (*server.Server, *prometheus.Registry) {
	t.Helper()
	cfg := server.Config{Host: "127.0.0.1", MaxBodySize: "1KB"}
	cfg.ApplyDefaults()
	srv := server.New(cfg, logger.Nop())

	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewMetrics(reg, "clinic")
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	srv.ApplyMiddleware(metrics)
	srv.RegisterDefaultEndpoints("clinic-api", checker, reg)
	return srv, reg
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	return rr
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	var cfg server.Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.ShutdownTimeout != 10 || cfg.MaxBodySize != "1MB" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*server.Config)
	}{
		{"port", func(c *server.Config) { c.Port = 70000 }},
		{"read timeout", func(c *server.Config) { c.ReadTimeout = -1 }},
		{"shutdown timeout", func(c *server.Config) { c.ShutdownTimeout = -1 }},
		{"credentials with wildcard", func(c *server.Config) { c.CORS.AllowCredentials = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []component.HealthStatus
		wantStatus component.HealthStatus
		wantCode   int
	}{
		{"no components", nil, component.StatusHealthy, http.StatusOK},
		{"all healthy", []component.HealthStatus{component.StatusHealthy, component.StatusHealthy}, component.StatusHealthy, http.StatusOK},
		{"degraded", []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, component.StatusDegraded, http.StatusOK},
		{"unhealthy wins", []component.HealthStatus{component.StatusDegraded, component.StatusUnhealthy}, component.StatusUnhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := func(context.Context) []component.Health {
				out := make([]component.Health, len(tt.statuses))
				for i, s := range tt.statuses {
					out[i] = component.Health{Name: fmt.Sprintf("c%d", i), Status: s}
				}
				return out
			}
			srv, _ := newServer(t, checker)
			rr := get(srv.Handler(), "/health")
			if rr.Code != tt.wantCode {
				t.Fatalf("status code = %d, want %d", rr.Code, tt.wantCode)
			}
			var report endpoint.HealthReport
			if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if report.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", report.Status, tt.wantStatus)
			}
			if len(report.Components) != len(tt.statuses) {
				t.Errorf("components = %d, want %d", len(report.Components), len(tt.statuses))
			}
		})
	}
}

func TestInfoEndpoint(t *testing.T) {
	srv, _ := newServer(t, nil)
	rr := get(srv.Handler(), "/info")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["service"] != "clinic-api" || body["version"] == "" {
		t.Errorf("unexpected info: %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newServer(t, nil)
	h := srv.Handler()
	get(h, "/info")

	rr := get(h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `clinic_http_requests_total{method="GET",route="/info",status="200"} 1`) {
		t.Errorf("request counter missing from exposition:\n%s", rr.Body.String())
	}
}

func TestHandler_TransportMiddleware(t *testing.T) {
	srv, _ := newServer(t, nil)
	srv.Engine().POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 4096)))
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversize body: status = %d, want 413", rr.Code)
	}

	rr = get(srv.Handler(), "/nowhere")
	if rr.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("unmatched routes should still get a request id")
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody apperrors.ErrorCode
	}{
		{"app error", apperrors.NotFound("appointment", "7"), http.StatusNotFound, apperrors.ErrCodeNotFound},
		{"wrapped app error", fmt.Errorf("handler: %w", apperrors.Conflict("taken")), http.StatusConflict, apperrors.ErrCodeConflict},
		{"plain error", io.ErrUnexpectedEOF, http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			server.RespondError(c, tt.err)

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.wantBody {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.wantBody)
			}
			if strings.Contains(rr.Body.String(), "unexpected EOF") {
				t.Error("internal cause leaked")
			}
		})
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	cfg := server.Config{Host: "127.0.0.1", Port: 0}
	cfg.ApplyDefaults()
	cfg.Port = 0
	srv := server.New(cfg, logger.Nop())
	srv.RegisterDefaultEndpoints("clinic-api", nil, prometheus.NewRegistry())
	comp := server.NewComponent(srv)
	ctx := context.Background()

	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("before start: %s, want unhealthy", h.Status)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("after start: %s, want healthy", h.Status)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("live /health = %d, want 200", resp.StatusCode)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if _, err := http.Get("http://" + srv.Addr() + "/health"); err == nil {
		t.Error("server still answering after Stop")
	}
}

func TestServer_TLS(t *testing.T) {
	certs := tlstest.Generate(t)
	cfg := server.Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	cfg.TLS = security.TLSConfig{Enabled: true, CertFile: certs.CertFile, KeyFile: certs.KeyFile}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	srv := server.New(cfg, logger.Nop())
	srv.RegisterDefaultEndpoints("clinic-api", nil, prometheus.NewRegistry())
	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = srv.Stop(ctx) }()

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig:   &tls.Config{RootCAs: certs.Pool, MinVersion: tls.VersionTLS12},
		ForceAttemptHTTP2: true,
	}}
	resp, err := client.Get("https://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET over TLS: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.TLS == nil {
		t.Errorf("status %d, tls state %v", resp.StatusCode, resp.TLS)
	}
	if resp.ProtoMajor != 2 {
		t.Errorf("negotiated %s, want HTTP/2", resp.Proto)
	}

	bad := cfg
	bad.TLS.KeyFile = ""
	if err := bad.Validate(); err == nil {
		t.Error("tls without key accepted")
	}
}
