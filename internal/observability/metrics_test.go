package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.ObserveResolution("ok", time.Millisecond)
	m.IncMappingMutation("create")
	m.IncBulkItem("created")
	m.IncHistoryAppendFailure()
	m.ObserveCacheLookup(true)
	m.RegisterDBStats(nil, "x")
	if m.Gatherer() != nil {
		t.Fatalf("nil metrics should have no gatherer")
	}
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.IncMappingMutation("create")
	m.IncMappingMutation("update")
	m.IncMappingMutation("update")
	m.IncHistoryAppendFailure()
	m.ObserveCacheLookup(false)

	if got := testutil.ToFloat64(m.mappingMutations.WithLabelValues("update")); got != 2 {
		t.Fatalf("update mutations: want=2 got=%v", got)
	}
	if got := testutil.ToFloat64(m.historyAppendFail); got != 1 {
		t.Fatalf("history failures: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")); got != 1 {
		t.Fatalf("cache misses: want=1 got=%v", got)
	}
}

func TestMetricsHandlerExposesSeries(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/resolve", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `pm_api_requests_total{method="POST",route="/resolve",status="200"} 1`) {
		t.Fatalf("expected api request series in exposition")
	}
}
