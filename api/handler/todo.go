package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todos/api/transport"
	"github.com/fastygo/todos/pkg/httpcontext"
	todoUC "github.com/fastygo/todos/usecase/todo"
)

type TodoHandler struct {
	baseHandler
	uc *todoUC.UseCase
}

func NewTodoHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List todos
// @Tags todos
// @Router /todos [get]
func (h *TodoHandler) List(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	query := todoUC.ListQuery{
		Completed: string(args.Peek("completed")),
		Priority:  string(args.Peek("priority")),
		Title:     string(args.Peek("title")),
		DueFrom:   string(args.Peek("dueFrom")),
		DueTo:     string(args.Peek("dueTo")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todos, err := h.uc.List(stdCtx, ownerID, query)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, todos)
}

// @Summary Create todo
// @Tags todos
// @Router /todos [post]
func (h *TodoHandler) Create(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	req, err := transport.DecodeCreateTodo(ctx.PostBody())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	created, err := h.uc.Create(stdCtx, ownerID, todoUC.Draft{
		Title:       *req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
		Priority:    req.Priority,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Get todo
// @Tags todos
// @Router /todos/{id} [get]
func (h *TodoHandler) Get(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todo, err := h.uc.Get(stdCtx, ownerID, pathID(ctx))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, todo)
}

// @Summary Replace todo
// @Tags todos
// @Router /todos/{id} [put]
func (h *TodoHandler) Replace(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	req, err := transport.DecodeReplaceTodo(ctx.PostBody())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	todo, err := h.uc.Replace(stdCtx, ownerID, pathID(ctx), todoUC.Replacement{
		Title:       *req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Completed:   *req.Completed,
		Priority:    *req.Priority,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, todo)
}

// @Summary Partially update todo
// @Tags todos
// @Router /todos/{id} [patch]
func (h *TodoHandler) Update(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	req, err := transport.DecodePatchTodo(ctx.PostBody())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	todo, err := h.uc.Update(stdCtx, ownerID, pathID(ctx), todoUC.Patch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		DueDateSet:  req.DueDateSet,
		Completed:   req.Completed,
		Priority:    req.Priority,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, todo)
}

// @Summary Delete todo
// @Tags todos
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, ownerID, pathID(ctx)); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

func pathID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}
