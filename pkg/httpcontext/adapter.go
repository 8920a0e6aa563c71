package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/todos/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyOwnerID    Key = "owner_id"
)

const requestIDHeader = "X-Request-ID"

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with
// request metadata, including the owner id set by the access guard.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if ownerID, ok := OwnerID(ctx); ok {
		stdCtx = context.WithValue(stdCtx, KeyOwnerID, ownerID)
	}

	return stdCtx, cancel
}

// RequestID returns the request id of ctx, reusing an inbound X-Request-ID or generating
// one. The id is echoed on the response and stays stable for the rest of the request.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if id, ok := ctx.UserValue(requestIDHeader).(string); ok {
		return id
	}
	id := strings.TrimSpace(string(ctx.Request.Header.Peek(requestIDHeader)))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetUserValue(requestIDHeader, id)
	ctx.Response.Header.Set(requestIDHeader, id)
	return id
}

// SetOwnerID records the authenticated owner for downstream handlers.
func SetOwnerID(ctx *fasthttp.RequestCtx, ownerID string) {
	ctx.SetUserValue(string(KeyOwnerID), ownerID)
}

// OwnerID returns the owner id attached by the access guard.
func OwnerID(ctx *fasthttp.RequestCtx) (string, bool) {
	ownerID, ok := ctx.UserValue(string(KeyOwnerID)).(string)
	return ownerID, ok && ownerID != ""
}

// OwnerIDFromContext returns the owner id carried by a context built with Attach.
func OwnerIDFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(KeyOwnerID).(string)
	return ownerID, ok && ownerID != ""
}
