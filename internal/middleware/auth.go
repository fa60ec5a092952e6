package middleware

import (
	"strings"

	"github.com/VictorEZCodes/BouncerLink/internal/auth"
	"github.com/danielgtaylor/huma/v2"
)

// Authenticate returns a huma middleware that verifies an optional
// bearer token and stores the caller identity in the context.
// Requests without a token, or with an invalid one, proceed
// anonymously; handlers decide per-operation what anonymity means.
func Authenticate(_ huma.API, verifier *auth.Verifier) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			next(ctx)

			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			next(ctx)

			return
		}

		newCtx := auth.ContextWithIdentity(ctx.Context(), identity)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}
