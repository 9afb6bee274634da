package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveLookup("local")
	m.ObserveSource("directory", time.Second, errors.New("boom"))
	m.ObserveCache(true)
	m.ObserveHistoryFlush(3, nil)
}

func TestHandlerExposesCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())
	m.ObserveLookup("local")
	m.ObserveSource("directory", 20*time.Millisecond, errors.New("timeout"))
	m.ObserveCache(false)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`callerid_lookups_total{name_source="local"} 1`,
		`callerid_source_errors_total{source="directory"} 1`,
		`callerid_cache_requests_total{result="miss"} 1`,
		`http_requests_total{method="GET",route="/ping",status="200"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, text)
		}
	}
}
