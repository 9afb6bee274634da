package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "callerid_backend/internal/http"
	"callerid_backend/platform/logger"
	"callerid_backend/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type testConfig struct {
	allowAll bool
	origins  []string
}

func (c testConfig) GetHTTPAddr() string            { return ":0" }
func (c testConfig) GetCORSAllowAll() bool          { return c.allowAll }
func (c testConfig) GetCORSOrigins() []string       { return c.origins }
func (c testConfig) GetCORSAllowCreds() bool        { return true }
func (c testConfig) GetRateLimitPerSecond() float64 { return 0 }
func (c testConfig) GetRateLimitBurst() int         { return 0 }
func (c testConfig) GetJWTAccessSecret() string     { return "secret" }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, "echo") })
	ctx.Protected.GET("/private", func(c *gin.Context) { c.String(http.StatusOK, "private") })
	ctx.Admin.GET("/only", func(c *gin.Context) { c.String(http.StatusOK, "admin") })
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(health apphttp.HealthChecker) *gin.Engine {
	return New(&apphttp.App{
		Config:  testConfig{origins: []string{"https://app.example.com"}},
		Logger:  logger.Nop(),
		Health:  health,
		Metrics: metrics.New(prometheus.NewRegistry()),
		Modules: []apphttp.Module{echoModule{}},
	})
}

func get(engine *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthReflectsDatabase(t *testing.T) {
	if rec := get(newEngine(pinger{}), "/api/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := get(newEngine(pinger{err: errors.New("down")}), "/api/health", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestModuleRoutesAndGroups(t *testing.T) {
	engine := newEngine(pinger{})

	if rec := get(engine, "/api/v1/echo", nil); rec.Code != http.StatusOK {
		t.Fatalf("public route: expected 200, got %d", rec.Code)
	}
	if rec := get(engine, "/api/v1/private", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("protected route: expected 401, got %d", rec.Code)
	}
	if rec := get(engine, "/api/v1/admin/only", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("admin route: expected 401, got %d", rec.Code)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	engine := newEngine(pinger{})

	rec := get(engine, "/api/v1/echo", map[string]string{"Origin": "https://app.example.com"})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}

	rec = get(engine, "/api/v1/echo", map[string]string{"Origin": "https://evil.example.com"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown origin, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newEngine(pinger{})
	get(engine, "/api/v1/echo", nil)

	rec := get(engine, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
