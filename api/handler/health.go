package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todos/api/transport"
	"github.com/fastygo/todos/internal/infrastructure/monitor"
	"github.com/fastygo/todos/pkg/httpcontext"
)

// Version is reported on the API root.
const Version = "1.0.0"

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary API status
// @Tags health
// @Router / [get]
func (h *HealthHandler) Root(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusOK, transport.StatusResponse{
		Success: true,
		Message: "todos API is running",
		Version: Version,
	})
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	if h.monitor == nil {
		h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("health monitor disabled", nil))
		return
	}
	status := h.monitor.GetStatus()
	if status.Healthy {
		h.respondSuccess(ctx, http.StatusOK, status)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("dependencies unhealthy", status))
}

// NotFound answers every unmatched route.
func (h *HealthHandler) NotFound(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusNotFound, transport.NewError("route not found", nil))
}
