package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kbukum/clinic/auth"
	"github.com/kbukum/clinic/auth/authctx"
	apperrors "github.com/kbukum/clinic/errors"
	"github.com/kbukum/clinic/logger"
	"github.com/kbukum/clinic/resilience"
	"github.com/kbukum/clinic/server/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apperrors.ErrorBody {
	t.Helper()
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not an error response: %v (%s)", err, rr.Body.String())
	}
	return body.Error
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: logger.FormatJSON}, "test", &buf)

	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/ok", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("no panic: status = %d, want 200", rr.Code)
	}

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("panic: status = %d, want 500", rr.Code)
	}
	if got := decodeError(t, rr).Code; got != apperrors.ErrCodeInternal {
		t.Errorf("code = %s, want %s", got, apperrors.ErrCodeInternal)
	}
	if strings.Contains(rr.Body.String(), "kaboom") {
		t.Error("panic value leaked into the response")
	}
	if !strings.Contains(buf.String(), "kaboom") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		seen = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		rr := serve(r, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		id := rr.Header().Get(middleware.HeaderRequestID)
		if id == "" {
			t.Fatal("expected a generated request id")
		}
		if seen != id {
			t.Errorf("context id = %q, header id = %q", seen, id)
		}
	})

	t.Run("preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set(middleware.HeaderRequestID, "custom-id-123")
		rr := serve(r, req)
		if got := rr.Header().Get(middleware.HeaderRequestID); got != "custom-id-123" {
			t.Errorf("id = %q, want custom-id-123", got)
		}
	})

	t.Run("oversized replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set(middleware.HeaderRequestID, strings.Repeat("x", 500))
		rr := serve(r, req)
		if got := rr.Header().Get(middleware.HeaderRequestID); len(got) > 128 {
			t.Errorf("oversized id was echoed back (%d bytes)", len(got))
		}
	})
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func TestCORS(t *testing.T) {
	cfg := middleware.CORSConfig{
		AllowedOrigins:   []string{"https://portal.example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           600,
	}
	reached := false
	h := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantOrigin  string
		wantMethods string
		wantStatus  int
		wantReached bool
	}{
		{"allowed simple", http.MethodGet, "https://portal.example.com", false, "https://portal.example.com", "", http.StatusOK, true},
		{"disallowed simple", http.MethodGet, "https://evil.example.com", false, "", "", http.StatusOK, true},
		{"no origin", http.MethodGet, "", false, "", "", http.StatusOK, true},
		{"allowed preflight", http.MethodOptions, "https://portal.example.com", true, "https://portal.example.com", "GET, POST", http.StatusNoContent, false},
		{"disallowed preflight", http.MethodOptions, "https://evil.example.com", true, "", "", http.StatusNoContent, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(tt.method, "/appointments", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			rr := serve(h, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rr.Header().Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Errorf("allow-methods = %q, want %q", got, tt.wantMethods)
			}
			if reached != tt.wantReached {
				t.Errorf("handler reached = %v, want %v", reached, tt.wantReached)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// BodySizeLimit
// ---------------------------------------------------------------------------

func TestBodySizeLimit(t *testing.T) {
	h := middleware.BodySizeLimit("1KB")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r.Body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := serve(h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	if rr.Code != http.StatusOK {
		t.Fatalf("small body: status = %d, want 200", rr.Code)
	}

	rr = serve(h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 2048))))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("declared oversize: status = %d, want 413", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 2048)))
	req.ContentLength = -1
	rr = serve(h, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("undeclared oversize: status = %d, want read failure", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Chain and GinWrap
// ---------------------------------------------------------------------------

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-before")
				next.ServeHTTP(w, r)
				order = append(order, name+"-after")
			})
		}
	}

	h := middleware.Chain(mark("m1"), mark("m2"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}))
	serve(h, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	want := []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestGinWrap_ShortCircuit(t *testing.T) {
	reached := false
	r := gin.New()
	r.Use(middleware.GinWrap(middleware.CORS(middleware.CORSConfig{AllowedOrigins: []string{"*"}})))
	r.OPTIONS("/x", func(c *gin.Context) { reached = true })

	req := httptest.NewRequest(http.MethodOptions, "/x", http.NoBody)
	req.Header.Set("Origin", "https://a.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := serve(r, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}
	if reached {
		t.Error("route handler ran after the wrapped middleware answered")
	}
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)

	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/appointments/:id", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("lookup failed"))
		c.Status(http.StatusInternalServerError)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if buf.Len() != 0 {
		t.Fatalf("health request was logged: %s", buf.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/appointments/7", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret-token")
	serve(r, req)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["level"] != "error" {
		t.Errorf("level = %v, want error", entry["level"])
	}
	if entry["route"] != "/appointments/:id" {
		t.Errorf("route = %v, want the route template", entry["route"])
	}
	if entry[logger.FieldStatus] != float64(500) {
		t.Errorf("status = %v, want 500", entry[logger.FieldStatus])
	}
	if !strings.Contains(fmt.Sprint(entry[logger.FieldError]), "lookup failed") {
		t.Errorf("error = %v, want the attached error", entry[logger.FieldError])
	}
	if strings.Contains(buf.String(), "secret-token") {
		t.Error("bearer token leaked into the request log")
	}
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := middleware.NewMetrics(reg, "clinic")
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	if _, err := middleware.NewMetrics(reg, "clinic"); err == nil {
		t.Error("registering twice should fail")
	}

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/appointments/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/appointments/1", http.NoBody))
	serve(r, httptest.NewRequest(http.MethodGet, "/appointments/2", http.NoBody))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody))

	if n := testutil.CollectAndCount(reg, "clinic_http_requests_total"); n != 2 {
		t.Errorf("series = %d, want 2 (one route, one unmatched)", n)
	}
	want := `
# HELP clinic_http_requests_total HTTP requests by method, route and status.
# TYPE clinic_http_requests_total counter
clinic_http_requests_total{method="GET",route="/appointments/:id",status="200"} 2
clinic_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "clinic_http_requests_total"); err != nil {
		t.Error(err)
	}
}

// ---------------------------------------------------------------------------
// RateLimit
// ---------------------------------------------------------------------------

func TestRateLimit(t *testing.T) {
	limiter := resilience.NewKeyedRateLimiter(resilience.PerMinute("login", 2))
	r := gin.New()
	r.POST("/login", middleware.RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	login := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", http.NoBody)
		req.RemoteAddr = ip + ":5555"
		return serve(r, req)
	}

	for i := 0; i < 2; i++ {
		if rr := login("10.0.0.1"); rr.Code != http.StatusOK {
			t.Fatalf("attempt %d: status = %d, want 200", i+1, rr.Code)
		}
	}
	rr := login("10.0.0.1")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt: status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if got := decodeError(t, rr).Code; got != apperrors.ErrCodeRateLimited {
		t.Errorf("code = %s, want %s", got, apperrors.ErrCodeRateLimited)
	}
	if rr := login("10.0.0.2"); rr.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

type resolverFunc func(ctx context.Context, token string) (auth.Principal, error)

func (f resolverFunc) Resolve(ctx context.Context, token string) (auth.Principal, error) {
	return f(ctx, token)
}

type permissionFunc func(p auth.Principal, permission string) error

func (f permissionFunc) RequirePermission(p auth.Principal, permission string) error {
	return f(p, permission)
}

var alice = auth.Principal{ID: 1, Role: auth.RolePatient, Email: "alice@example.com"}

var testResolver = resolverFunc(func(_ context.Context, token string) (auth.Principal, error) {
	switch token {
	case "good":
		return alice, nil
	case "broken-store":
		return auth.Principal{}, fmt.Errorf("load principal: connection refused")
	default:
		return auth.Principal{}, fmt.Errorf("resolve: %w", auth.ErrInvalidOrExpiredCredential)
	}
})

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, ok := middleware.BearerToken(req)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	r := gin.New()
	r.GET("/me", middleware.Authenticate(testResolver), func(c *gin.Context) {
		p, ok := authctx.Principal(c.Request.Context())
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "token": authctx.Token(c.Request.Context())})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   apperrors.ErrorCode
		challenge  bool
	}{
		{"valid", "Bearer good", http.StatusOK, "", false},
		{"missing", "", http.StatusUnauthorized, apperrors.ErrCodeUnauthorized, true},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, apperrors.ErrCodeUnauthorized, true},
		{"revoked", "Bearer revoked", http.StatusUnauthorized, apperrors.ErrCodeUnauthorized, true},
		{"store failure", "Bearer broken-store", http.StatusInternalServerError, apperrors.ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := serve(r, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantCode != "" {
				if got := decodeError(t, rr).Code; got != tt.wantCode {
					t.Errorf("code = %s, want %s", got, tt.wantCode)
				}
			}
			if got := rr.Header().Get("WWW-Authenticate") != ""; got != tt.challenge {
				t.Errorf("challenge header present = %v, want %v", got, tt.challenge)
			}
			if strings.Contains(rr.Body.String(), "connection refused") {
				t.Error("internal cause leaked into the response")
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	type seen struct {
		token string
		has   bool
	}
	var got seen
	r := gin.New()
	r.POST("/logout", middleware.OptionalAuth(testResolver), func(c *gin.Context) {
		_, has := authctx.Principal(c.Request.Context())
		got = seen{token: authctx.Token(c.Request.Context()), has: has}
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		header string
		want   seen
	}{
		{"", seen{}},
		{"Bearer good", seen{token: "good", has: true}},
		{"Bearer revoked", seen{token: "revoked"}},
	}
	for _, tt := range tests {
		got = seen{}
		req := httptest.NewRequest(http.MethodPost, "/logout", http.NoBody)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rr := serve(r, req)
		if rr.Code != http.StatusNoContent {
			t.Errorf("%q: status = %d, want 204", tt.header, rr.Code)
		}
		if got != tt.want {
			t.Errorf("%q: seen %+v, want %+v", tt.header, got, tt.want)
		}
	}
}

func TestRequirePermission(t *testing.T) {
	checker := permissionFunc(func(p auth.Principal, permission string) error {
		if p.Role == auth.RolePatient && permission == "appointment:create" {
			return nil
		}
		return auth.ErrWrongRole
	})

	r := gin.New()
	authn := middleware.Authenticate(testResolver)
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/appointments", authn, middleware.RequirePermission(checker, "appointment:create"), ok)
	r.POST("/medications", authn, middleware.RequirePermission(checker, "medication:create"), ok)
	r.GET("/bare", middleware.RequirePermission(checker, "appointment:create"), ok)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodPost, "/appointments", http.StatusOK},
		{http.MethodPost, "/medications", http.StatusForbidden},
		{http.MethodGet, "/bare", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
		req.Header.Set("Authorization", "Bearer good")
		if rr := serve(r, req); rr.Code != tt.want {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, rr.Code, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Tracing
// ---------------------------------------------------------------------------

func TestTracing_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Tracing())
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusAccepted)
	})
	if rr := serve(r, httptest.NewRequest(http.MethodGet, "/slow", http.NoBody)); rr.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rr.Code)
	}
}
