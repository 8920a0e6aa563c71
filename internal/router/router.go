package router

import (
	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	apiHandler "github.com/fastygo/todos/api/handler"
	"github.com/fastygo/todos/internal/middleware"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Todo   *apiHandler.TodoHandler
	Health *apiHandler.HealthHandler
}

type Options struct {
	// Prefix mounts every API route under a path such as "/api".
	Prefix string
	// Metrics, when set, instruments requests and serves GET /metrics.
	Metrics *middleware.Metrics
}

// New builds the route table. Unmatched routes and unsupported methods answer 404.
func New(handlers Handlers, guard func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) *router.Router {
	r := router.New()
	r.SaveMatchedRoutePath = true
	r.HandleMethodNotAllowed = false
	r.HandleOPTIONS = false
	r.NotFound = handlers.Health.NotFound

	if opts.Metrics != nil {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(
			promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{}),
		))
	}

	register := r.Handle
	if opts.Prefix != "" {
		register = r.Group(opts.Prefix).Handle
	}

	register(fasthttp.MethodGet, "/", handlers.Health.Root)
	register(fasthttp.MethodGet, "/health", handlers.Health.Check)

	register(fasthttp.MethodPost, "/register", handlers.Auth.Register)
	register(fasthttp.MethodPost, "/login", handlers.Auth.Login)
	register(fasthttp.MethodGet, "/protected", guard(handlers.Auth.Protected))

	register(fasthttp.MethodGet, "/todos", guard(handlers.Todo.List))
	register(fasthttp.MethodPost, "/todos", guard(handlers.Todo.Create))
	register(fasthttp.MethodGet, "/todos/{id}", guard(handlers.Todo.Get))
	register(fasthttp.MethodPut, "/todos/{id}", guard(handlers.Todo.Replace))
	register(fasthttp.MethodPatch, "/todos/{id}", guard(handlers.Todo.Update))
	register(fasthttp.MethodDelete, "/todos/{id}", guard(handlers.Todo.Delete))

	return r
}
