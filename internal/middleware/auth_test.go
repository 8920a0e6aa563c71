package middleware

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/todos/pkg/httpcontext"
)

type stubVerifier map[string]string

func (s stubVerifier) VerifyToken(token string) (string, bool) {
	owner, ok := s[token]
	return owner, ok
}

func TestAuthenticate(t *testing.T) {
	metrics := NewMetrics()
	guard := Authenticate(stubVerifier{"good": "owner-1"}, metrics, nil)

	var seen string
	protected := guard(func(ctx *fasthttp.RequestCtx) {
		seen, _ = httpcontext.OwnerID(ctx)
		ctx.SetStatusCode(http.StatusOK)
	})

	cases := []struct {
		name    string
		header  string
		status  int
		message string
		owner   string
	}{
		{name: "missing", header: "", status: http.StatusUnauthorized, message: "token not provided"},
		{name: "no scheme", header: "good", status: http.StatusUnauthorized, message: "malformed token"},
		{name: "wrong scheme", header: "Basic good", status: http.StatusUnauthorized, message: "malformed token"},
		{name: "extra part", header: "Bearer good extra", status: http.StatusUnauthorized, message: "malformed token"},
		{name: "double space", header: "Bearer  good", status: http.StatusUnauthorized, message: "malformed token"},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized, message: "invalid or expired token"},
		{name: "unknown token", header: "Bearer bad", status: http.StatusUnauthorized, message: "invalid or expired token"},
		{name: "valid", header: "Bearer good", status: http.StatusOK, owner: "owner-1"},
		{name: "lowercase scheme", header: "bearer good", status: http.StatusOK, owner: "owner-1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			var req fasthttp.Request
			req.SetRequestURI("/protected")
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			var ctx fasthttp.RequestCtx
			ctx.Init(&req, nil, nil)

			protected(&ctx)

			if ctx.Response.StatusCode() != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, ctx.Response.StatusCode())
			}
			if seen != tc.owner {
				t.Fatalf("expected owner %q, got %q", tc.owner, seen)
			}
			if tc.message == "" {
				return
			}
			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Success || body.Message != tc.message {
				t.Fatalf("unexpected body %s", ctx.Response.Body())
			}
		})
	}

	if got := testutil.ToFloat64(metrics.rejections.WithLabelValues("malformed")); got != 4 {
		t.Fatalf("expected 4 malformed rejections, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.rejections.WithLabelValues("invalid")); got != 2 {
		t.Fatalf("expected 2 invalid rejections, got %v", got)
	}
}

func TestAuthenticateWithoutMetrics(t *testing.T) {
	guard := Authenticate(stubVerifier{}, nil, nil)
	var ctx fasthttp.RequestCtx
	ctx.Init(&fasthttp.Request{}, nil, nil)

	guard(func(*fasthttp.RequestCtx) { t.Fatal("next must not run") })(&ctx)

	if ctx.Response.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", ctx.Response.StatusCode())
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"Bearer ", "", true},
		{"Bearer", "", false},
		{"Token abc", "", false},
		{"Bearer a b", "", false},
	}
	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		if token != tc.token || ok != tc.ok {
			t.Fatalf("%q: got (%q, %v), want (%q, %v)", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}
