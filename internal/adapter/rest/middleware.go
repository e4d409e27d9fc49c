package rest

import (
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clinic-api/internal/shared"
)

const ctxUserID = "auth_user_id"

// TokenVerifier checks a bearer token and returns the user id it names.
// *token.Manager implements it.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// RequestID tags every request with an id, honoring one supplied by the
// caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		}
		switch {
		case status >= 500:
			log.Error("request", attrs...)
		case status >= 400:
			log.Warn("request", attrs...)
		default:
			log.Info("request", attrs...)
		}
	}
}

// Recover converts panics into the catch-all error response instead of a
// dropped connection. The recovered value goes to the log only; the client
// always sees the kind's fixed generic message.
func Recover(router *ErrorRouter) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		router.log.Error("panic recovered",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"panic", recovered,
			"stack", string(debug.Stack()),
		)
		router.Respond(c, shared.E(shared.InternalServerError))
	})
}

// RequireAuth rejects requests without a valid bearer token and records the
// authenticated user id on the request context.
func RequireAuth(verifier TokenVerifier, router *ErrorRouter) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tok, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tok) == "" {
			router.Respond(c, shared.E(shared.Unauthorized))
			return
		}

		userID, err := verifier.Verify(strings.TrimSpace(tok))
		if err != nil {
			router.Respond(c, err)
			return
		}
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// AuthUserID returns the user id put there by RequireAuth.
func AuthUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}
