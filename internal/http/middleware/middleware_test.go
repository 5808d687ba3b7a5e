package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yungbote/parammap-backend/internal/observability"
	"github.com/yungbote/parammap-backend/internal/platform/ctxutil"
	"github.com/yungbote/parammap-backend/internal/platform/logger"
)

func TestAttachTraceContextEchoesHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())

	var seen *ctxutil.TraceData
	r.GET("/ping", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerRequestID, "req-1")
	req.Header.Set(headerTraceID, "trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-1" || seen.TraceID != "trace-1" {
		t.Fatalf("unexpected trace data: %+v", seen)
	}
	if rec.Header().Get(headerRequestID) != "req-1" || rec.Header().Get(headerTraceID) != "trace-1" {
		t.Fatalf("headers not echoed: %v", rec.Header())
	}
}

func TestAttachTraceContextMintsIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerRequestID, strings.Repeat("x", maxIDLen+1))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	reqID := rec.Header().Get(headerRequestID)
	if reqID == "" || len(reqID) > maxIDLen {
		t.Fatalf("expected minted request id, got %q", reqID)
	}
	if rec.Header().Get(headerTraceID) == "" {
		t.Fatalf("expected minted trace id")
	}
}

func TestMetricsRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/vendors/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/vendors/a", "/vendors/b", "/nope", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	// One series for the template, one for unmatched; /metrics is not counted.
	n, err := testutil.GatherAndCount(m.Gatherer(), "pm_api_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("series: got=%d want=2", n)
	}
}

func TestMetricsNilIsPassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil), RequestLogger(logger.Nop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status: got=%d", rec.Code)
	}
}
