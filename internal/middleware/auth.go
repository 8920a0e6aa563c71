package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todos/api/transport"
	"github.com/fastygo/todos/pkg/httpcontext"
)

const (
	msgTokenMissing   = "token not provided"
	msgTokenMalformed = "malformed token"
	msgTokenInvalid   = "invalid or expired token"
)

// TokenVerifier resolves the owner id bound to a bearer token.
type TokenVerifier interface {
	VerifyToken(token string) (ownerID string, ok bool)
}

// Authenticate is the access guard for protected routes. It requires
// "Authorization: Bearer <token>", verifies the token on every request and attaches
// the owner id to the request. metrics may be nil.
func Authenticate(verifier TokenVerifier, metrics *Metrics, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	reject := func(ctx *fasthttp.RequestCtx, reason, message string) {
		metrics.guardRejected(reason)
		logger.Debug("request rejected by access guard",
			zap.String("reason", reason),
			zap.ByteString("path", ctx.Path()),
			zap.String("request_id", httpcontext.RequestID(ctx)),
		)
		body, _ := json.Marshal(transport.NewError(message, nil))
		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(http.StatusUnauthorized)
		ctx.SetBody(body)
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			header := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
			if header == "" {
				reject(ctx, "missing", msgTokenMissing)
				return
			}

			token, ok := bearerToken(header)
			if !ok {
				reject(ctx, "malformed", msgTokenMalformed)
				return
			}

			ownerID, ok := verifier.VerifyToken(token)
			if !ok {
				reject(ctx, "invalid", msgTokenInvalid)
				return
			}

			httpcontext.SetOwnerID(ctx, ownerID)
			next(ctx)
		}
	}
}

// bearerToken splits header on single spaces and accepts exactly
// "<bearer> <token>" with a case-insensitive scheme. An empty token is passed
// through and fails verification.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
