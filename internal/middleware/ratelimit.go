package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/VictorEZCodes/BouncerLink/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RateLimiter returns a huma middleware enforcing the per-endpoint
// limits attached via ratelimit.MetadataKey. Endpoints without a
// config pass through untouched.
func RateLimiter(api huma.API, store ratelimit.Store, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := endpointConfig(ctx)
		if cfg == nil || len(cfg.Limits) == 0 {
			next(ctx)

			return
		}

		limiter := ratelimit.NewSlidingWindowLimiter(store, cfg.Limits...)

		allowed, err := limiter.Allow(ctx.Context(), clientKey(ctx))
		if err != nil {
			logger.Error("rate limit check failed", zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if !allowed {
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

func endpointConfig(ctx huma.Context) *ratelimit.EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[ratelimit.MetadataKey].(ratelimit.EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}

// clientKey keys rate limiting on a hash of client IP and user-agent.
func clientKey(ctx huma.Context) string {
	ip := extractClientIP(ctx)
	ua := ctx.Header("User-Agent")

	hash := sha256.Sum256([]byte(ip + "|" + ua))

	return hex.EncodeToString(hash[:])
}
