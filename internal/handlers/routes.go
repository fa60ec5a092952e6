package handlers

import (
	"net/http"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all routes with their per-endpoint rate
// limit configuration.
func RegisterRoutes(
	api huma.API,
	links *LinkHandler,
	resolver *ResolveHandler,
	analytics *AnalyticsHandler,
	health *HealthHandler,
) {
	// Write operations get strict limits.
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/shorten",
		Summary:     "Create short link",
		Description: "Creates a shortened link. Anonymous links expire after 24 hours and carry no access controls.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
					{Window: 24 * time.Hour, Max: 500},
				},
			},
		},
	}, links.CreateLink)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/links",
		Summary:     "List own links",
		Description: "Lists the authenticated caller's links, newest first.",
		Tags:        []string{"Links"},
	}, links.ListLinks)

	// Redirects are high traffic; limits stay relaxed.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/r/{code}",
		Summary:     "Resolve short link",
		Description: "Redirects to the destination URL, or to the access form when the link is gated.",
		Tags:        []string{"Resolution"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, resolver.Redirect)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/r/{code}",
		Summary:     "Resolve gated short link",
		Description: "Submits credentials for a gated link and returns the destination URL.",
		Tags:        []string{"Resolution"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 60},
				},
			},
		},
	}, resolver.SubmitAccess)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/access/{code}",
		Summary:     "Access challenge requirements",
		Description: "Reports which credentials a gated link requires, without counting a visit.",
		Tags:        []string{"Resolution"},
	}, resolver.Challenge)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/analytics/{code}",
		Summary:     "Link analytics",
		Description: "Visit statistics. Owners see full details; everyone else only the total visit count.",
		Tags:        []string{"Analytics"},
	}, analytics.GetAnalytics)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, health.Check)
}
