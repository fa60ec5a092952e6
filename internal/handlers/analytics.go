package handlers

import (
	"context"
	"errors"

	"github.com/VictorEZCodes/BouncerLink/internal/analytics"
	"github.com/VictorEZCodes/BouncerLink/internal/auth"
	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// recentVisitCount is how many visit-log entries a summary includes.
const recentVisitCount = 10

// AnalyticsHandler serves visit statistics with an authorization
// boundary: only the link's owner sees detailed logs and email
// status, everyone else gets the total visit count.
type AnalyticsHandler struct {
	store  link.Store
	visits link.VisitLog
	logger *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(store link.Store, visits link.VisitLog, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		store:  store,
		visits: visits,
		logger: logger,
	}
}

// GetAnalytics returns the summary for a link. Authorization is
// decided here, before any aggregation runs.
func (h *AnalyticsHandler) GetAnalytics(ctx context.Context, req *AnalyticsRequest) (*AnalyticsResponse, error) {
	l, err := h.store.GetByCode(ctx, link.Code(req.Code))
	if err != nil {
		if errors.Is(err, link.ErrNotFound) {
			return nil, huma.Error404NotFound("link not found")
		}

		h.logger.Error("failed to load link",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error503ServiceUnavailable("store unavailable, retry later")
	}

	identity, authenticated := auth.IdentityFromContext(ctx)

	resp := &AnalyticsResponse{}
	resp.Body.TotalVisits = l.Visits
	resp.Body.IsAuthenticated = authenticated

	if !authenticated || l.OwnerID == "" || identity.UserID != l.OwnerID {
		return resp, nil
	}

	visits, err := h.visits.ListByLink(ctx, l.Code, 0)
	if err != nil {
		h.logger.Error("failed to load visit log",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to load analytics")
	}

	mode := analytics.UniqueByClient
	if req.Mode == string(analytics.UniqueByEmail) {
		mode = analytics.UniqueByEmail
	}

	resp.Body.Details = analytics.Summarize(l, visits, mode, recentVisitCount)

	return resp, nil
}
