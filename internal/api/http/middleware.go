package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/bolao/internal/auth"
	"github.com/immxrtalbeast/bolao/internal/domain"
	"github.com/immxrtalbeast/bolao/internal/metrics"
	"github.com/immxrtalbeast/bolao/lib/logger/sl"
)

const (
	identityKey = "identity"
	claimsKey   = "claims"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// RequireAuth rejects the request with 401 unless it carries a valid bearer
// token.
func RequireAuth(tokens TokenVerifier, log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := authenticate(ctx, tokens)
		if err != nil {
			log.Debug("authentication failed", slog.String("path", ctx.Request.URL.Path), sl.Err(err))
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgUnauthorized})
			return
		}
		setIdentity(ctx, claims)
		ctx.Next()
	}
}

// OptionalAuth resolves the caller when a valid token is present and
// continues anonymously otherwise.
func OptionalAuth(tokens TokenVerifier, log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := authenticate(ctx, tokens)
		if err != nil {
			log.Debug("continuing anonymously", slog.String("path", ctx.Request.URL.Path), sl.Err(err))
			ctx.Set(identityKey, domain.Anonymous())
			ctx.Next()
			return
		}
		setIdentity(ctx, claims)
		ctx.Next()
	}
}

func authenticate(ctx *gin.Context, tokens TokenVerifier) (*auth.Claims, error) {
	token, err := auth.ExtractBearer(ctx.GetHeader("Authorization"))
	if err != nil {
		return nil, err
	}
	return tokens.Verify(token)
}

func setIdentity(ctx *gin.Context, claims *auth.Claims) {
	// Verify guarantees the subject parses
	userID, _ := claims.UserID()
	ctx.Set(identityKey, domain.Authenticated(userID))
	ctx.Set(claimsKey, claims)
}

func identityFrom(ctx *gin.Context) domain.Identity {
	if v, ok := ctx.Get(identityKey); ok {
		if identity, ok := v.(domain.Identity); ok {
			return identity
		}
	}
	return domain.Anonymous()
}

func claimsFrom(ctx *gin.Context) *auth.Claims {
	if v, ok := ctx.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// RequestLogger logs one line per request and records its latency.
func RequestLogger(log *slog.Logger, rec metrics.Recorder) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		duration := time.Since(start)
		status := ctx.Writer.Status()
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		rec.HTTPRequest(ctx.Request.Method, route, status, duration)

		attrs := []slog.Attr{
			slog.String("method", ctx.Request.Method),
			slog.String("path", ctx.Request.URL.Path),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Float64("duration_ms", float64(duration.Microseconds())/1000),
			slog.String("client_ip", ctx.ClientIP()),
		}
		if userID, ok := identityFrom(ctx).UserID(); ok {
			attrs = append(attrs, slog.String("user_id", userID.String()))
		}
		if len(ctx.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", ctx.Errors.String()))
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		log.LogAttrs(ctx.Request.Context(), level, "http request", attrs...)
	}
}
