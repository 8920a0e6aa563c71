package middleware

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/todos/pkg/httpcontext"
)

func TestInstrumentAndAccessLog(t *testing.T) {
	metrics := NewMetrics()
	handler := AccessLog(nil)(metrics.Instrument(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(http.StatusTeapot)
	}))

	var req fasthttp.Request
	req.SetRequestURI("/anything")
	req.Header.Set("X-Request-ID", "req-42")
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)

	handler(&ctx)

	if got := string(ctx.Response.Header.Peek("X-Request-ID")); got != "req-42" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
	if got := httpcontext.RequestID(&ctx); got != "req-42" {
		t.Fatalf("expected stable request id, got %q", got)
	}
	if got := testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "unmatched", "418")); got != 1 {
		t.Fatalf("expected one recorded request, got %v", got)
	}
}

func TestNilMetricsPassThrough(t *testing.T) {
	var metrics *Metrics
	called := false
	metrics.Instrument(func(*fasthttp.RequestCtx) { called = true })(&fasthttp.RequestCtx{})
	if !called {
		t.Fatal("expected the wrapped handler to run")
	}
}
