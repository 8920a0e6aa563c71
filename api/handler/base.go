package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todos/api/transport"
	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/pkg/httpcontext"
	appLogger "github.com/fastygo/todos/pkg/logger"
)

const msgInternal = "internal server error"

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// ownerID returns the identity attached by the access guard. Protected handlers are
// only mounted behind the guard, so a miss is an internal fault.
func (h baseHandler) ownerID(ctx *fasthttp.RequestCtx) (string, bool) {
	ownerID, ok := httpcontext.OwnerID(ctx)
	if !ok {
		h.logger.Error("owner id missing on protected route", zap.ByteString("path", ctx.Path()))
		h.respondJSON(ctx, http.StatusInternalServerError, transport.NewError(msgInternal, nil))
	}
	return ownerID, ok
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"success":false,"message":"` + msgInternal + `"}`)
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data))
}

// respondError maps err onto its status. Unclassified faults are logged with their
// cause and reported with a generic message.
func (h baseHandler) respondError(stdCtx context.Context, ctx *fasthttp.RequestCtx, err error) {
	status := mapError(err)
	if status == http.StatusInternalServerError {
		ownerID, _ := httpcontext.OwnerIDFromContext(stdCtx)
		appLogger.WithRequestID(stdCtx, h.logger).Error("request failed",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.String("owner_id", ownerID),
			zap.Error(err),
		)
	}
	h.respondJSON(ctx, status, transport.NewError(domain.MessageOf(err, msgInternal), nil))
}

func mapError(err error) int {
	switch domain.CodeOf(err) {
	case domain.ErrCodeInvalid, domain.ErrCodeInvalidID:
		return http.StatusBadRequest
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodeForbidden:
		return http.StatusForbidden
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeConflict:
		return http.StatusConflict
	case domain.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
