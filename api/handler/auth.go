package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todos/api/transport"
	"github.com/fastygo/todos/pkg/httpcontext"
	authUC "github.com/fastygo/todos/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a new user
// @Tags auth
// @Router /register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	req, err := transport.DecodeRegister(ctx.PostBody())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	user, err := h.uc.Register(stdCtx, authUC.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, transport.AuthResponse{
		Success: true,
		Message: "user registered successfully",
		User:    user,
	})
}

// @Summary Exchange credentials for a bearer token
// @Tags auth
// @Router /login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	req, err := transport.DecodeLogin(ctx.PostBody())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	res, err := h.uc.Login(stdCtx, authUC.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.AuthResponse{
		Success: true,
		Message: "login successful",
		Token:   res.Token,
		User:    &res.User,
	})
}

// @Summary Echo the authenticated identity
// @Tags auth
// @Router /protected [get]
func (h *AuthHandler) Protected(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.ProtectedResponse{
		Success: true,
		Message: "access granted",
		UserID:  ownerID,
	})
}
