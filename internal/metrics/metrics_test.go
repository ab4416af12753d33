package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRegistry_Inc(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()

	reg.Inc(ctx, AnalysesTotal, map[string]string{"tone": "Fair", "undertone": "warm"}, 1)
	reg.Inc(ctx, AnalysesTotal, map[string]string{"undertone": "warm", "tone": "Fair"}, 2)
	reg.Inc(ctx, AIFallbacksTotal, nil, 1)

	if got := reg.Value(AnalysesTotal, map[string]string{"tone": "Fair", "undertone": "warm"}); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
	if got := reg.Value(AIFallbacksTotal, nil); got != 1 {
		t.Errorf("Expected 1, got %d", got)
	}
	if got := reg.Value(CacheHitsTotal, nil); got != 0 {
		t.Errorf("Expected 0 for unknown counter, got %d", got)
	}
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var reg *Registry
	reg.Inc(context.Background(), AnalysesTotal, nil, 1)
	if got := reg.Value(AnalysesTotal, nil); got != 0 {
		t.Errorf("Expected 0 from nil registry, got %d", got)
	}
	if lines := reg.SnapshotLines(); len(lines) != 0 {
		t.Errorf("Expected no lines from nil registry, got %v", lines)
	}
}

func TestRegistry_SnapshotLines(t *testing.T) {
	reg := NewRegistry()
	reg.Inc(context.Background(), "b_total", nil, 2)
	reg.Inc(context.Background(), "a_total", map[string]string{"z": "1", "a": "2"}, 1)

	lines := reg.SnapshotLines()
	want := []string{"a_total{a=2,z=1} 1", "b_total 2"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Expected line %q, got %q", want[i], lines[i])
		}
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 404: "4xx", 503: "5xx", 0: "0", 700: "0"}
	for code, want := range tests {
		if got := StatusClass(code); got != want {
			t.Errorf("StatusClass(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestRequestCounter(t *testing.T) {
	reg := NewRegistry()
	e := echo.New()
	e.Use(RequestCounter(reg))
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", reg.EchoHandlerText)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Error("Expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(HeaderRequestID, "fixed-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != "fixed-id" {
		t.Errorf("Expected request id to be echoed, got %q", got)
	}

	labels := map[string]string{"method": http.MethodGet, "route": "/ok", "status": "2xx"}
	if got := reg.Value(HTTPRequestsTotal, labels); got != 2 {
		t.Errorf("Expected 2 counted requests, got %d", got)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "http_requests_total{method=GET,route=/ok,status=2xx} 2") {
		t.Errorf("Expected counter line in body, got %q", rec.Body.String())
	}
}
