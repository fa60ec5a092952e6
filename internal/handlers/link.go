package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/analytics"
	"github.com/VictorEZCodes/BouncerLink/internal/auth"
	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/VictorEZCodes/BouncerLink/internal/messaging"
	"github.com/VictorEZCodes/BouncerLink/internal/shortcode"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// AnonymousLifetime is the fixed lifetime of links created without an
// authenticated owner.
const AnonymousLifetime = 24 * time.Hour

// LinkHandler handles link creation and listing.
type LinkHandler struct {
	generator      *shortcode.Generator
	store          link.Store
	baseURL        string
	publishCreated messaging.Publish[analytics.LinkCreatedEvent]
	logger         *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	generator *shortcode.Generator,
	store link.Store,
	baseURL string,
	publishCreated messaging.Publish[analytics.LinkCreatedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		generator:      generator,
		store:          store,
		baseURL:        baseURL,
		publishCreated: publishCreated,
		logger:         logger,
	}
}

// CreateLink creates a short link. Anonymous callers always get a
// fixed 24h expiry and no access controls, whatever the body says.
func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	destination, err := validateDestinationURL(req.Body.URL)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid url")
	}

	now := time.Now()
	identity, authenticated := auth.IdentityFromContext(ctx)

	l := &link.Link{
		DestinationURL: destination,
		CreatedAt:      now,
	}

	if authenticated {
		if req.Body.ExpiresAt != nil && req.Body.ExpiresAt.Before(now) {
			return nil, huma.Error400BadRequest("expiry must be in the future")
		}

		l.OwnerID = identity.UserID
		l.OwnerEmail = identity.Email
		l.ExpiresAt = req.Body.ExpiresAt
		l.AccessCode = req.Body.AccessCode
		l.AllowedEmails = req.Body.AllowedEmails
		l.ClickLimit = req.Body.ClickLimit
		l.NotificationsEnabled = req.Body.NotificationsEnabled
	} else {
		expiresAt := now.Add(AnonymousLifetime)
		l.ExpiresAt = &expiresAt
	}

	customCode := req.Body.CustomCode
	if !authenticated {
		customCode = ""
	}

	if err = h.generator.Create(ctx, l, customCode); err != nil {
		switch {
		case errors.Is(err, shortcode.ErrInvalidCustomCode):
			return nil, huma.Error400BadRequest("invalid custom code")
		case errors.Is(err, link.ErrCodeConflict):
			return nil, huma.Error409Conflict("short code already taken")
		default:
			h.logger.Error("failed to create link", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to create link")
		}
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		Code:           string(l.Code),
		DestinationURL: l.DestinationURL,
		OwnerID:        l.OwnerID,
		Anonymous:      !authenticated,
		ExpiresAt:      l.ExpiresAt,
		CreatedAt:      l.CreatedAt,
		ClientIP:       meta.ClientIP,
		UserAgent:      meta.UserAgent,
	}

	if err = h.publishCreated(event); err != nil {
		h.logger.Error("failed to publish link created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	shortURL := fmt.Sprintf("%s/r/%s", h.baseURL, l.Code)

	resp := &CreateLinkResponse{}
	resp.Headers.Location = shortURL
	resp.Body.Code = string(l.Code)
	resp.Body.ShortURL = shortURL
	resp.Body.DestinationURL = l.DestinationURL
	resp.Body.ExpiresAt = l.ExpiresAt

	return resp, nil
}

// ListLinks returns the authenticated caller's links, newest first.
func (h *LinkHandler) ListLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	identity, authenticated := auth.IdentityFromContext(ctx)
	if !authenticated {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	links, err := h.store.ListByOwner(ctx, identity.UserID)
	if err != nil {
		h.logger.Error("failed to list links",
			zap.String("ownerId", identity.UserID),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to list links")
	}

	resp := &ListLinksResponse{}
	resp.Body.Links = make([]LinkItem, 0, len(links))

	for _, l := range links {
		resp.Body.Links = append(resp.Body.Links, LinkItem{
			Code:           string(l.Code),
			DestinationURL: l.DestinationURL,
			Visits:         l.Visits,
			CreatedAt:      l.CreatedAt,
			ExpiresAt:      l.ExpiresAt,
			LastVisitedAt:  l.LastVisitedAt,
		})
	}

	return resp, nil
}
