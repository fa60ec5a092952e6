package middleware

import (
	"net"
	"strings"

	"github.com/VictorEZCodes/BouncerLink/internal/handlers"
	"github.com/danielgtaylor/huma/v2"
)

// RequestMeta adds best-effort client IP and user-agent to the
// request context for the visit log.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  extractClientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}

// extractClientIP resolves the client address through proxy headers.
func extractClientIP(ctx huma.Context) string {
	// X-Forwarded-For may contain multiple IPs; the first one is the
	// original client.
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.Host()

	ip, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return ip
}
