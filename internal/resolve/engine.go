// Package resolve turns a short code plus optional credentials into a
// redirect destination or a denial, recording each authorized visit
// exactly once.
package resolve

import (
	"context"
	"errors"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/access"
	"github.com/VictorEZCodes/BouncerLink/internal/analytics"
	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/VictorEZCodes/BouncerLink/internal/messaging"
	"github.com/VictorEZCodes/BouncerLink/internal/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Meta carries best-effort request metadata for the visit log.
type Meta struct {
	ClientIP  string
	UserAgent string
}

// Engine orchestrates link resolution: lookup, expiry and quota
// checks, access evaluation, visit recording, and notification
// dispatch. It holds no link state across requests; the store is the
// single source of truth.
type Engine struct {
	store               link.Store
	visits              link.VisitLog
	publishNotification messaging.Publish[notify.Event]
	publishVisited      messaging.Publish[analytics.LinkVisitedEvent]
	logger              *zap.Logger
	now                 func() time.Time
}

// NewEngine creates a resolution engine.
func NewEngine(
	store link.Store,
	visits link.VisitLog,
	publishNotification messaging.Publish[notify.Event],
	publishVisited messaging.Publish[analytics.LinkVisitedEvent],
	logger *zap.Logger,
) *Engine {
	return &Engine{
		store:               store,
		visits:              visits,
		publishNotification: publishNotification,
		publishVisited:      publishVisited,
		logger:              logger,
		now:                 time.Now,
	}
}

// Resolve decides whether the requester may be redirected. Each
// successful resolution is a new billable click; resolving the same
// code twice records two visits. The returned error is non-nil only
// for infrastructure failures (link.ErrStoreUnavailable), never for
// any of the six outcome states.
func (e *Engine) Resolve(ctx context.Context, code link.Code, creds access.Credentials, meta Meta) (Outcome, error) {
	l, err := e.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, link.ErrNotFound) {
			return notFound(), nil
		}

		return Outcome{}, err
	}

	now := e.now()

	// Expiry and quota are checked against the snapshot the access
	// verdict will use. The quota check repeats inside RegisterVisit,
	// which is the authoritative gate under concurrency.
	if l.ExpiredAt(now) {
		return expired(), nil
	}

	if l.QuotaReached() {
		return quotaExceeded(), nil
	}

	if l.Gated() && creds.Empty() {
		return challengeRequired(l.AccessCode != "", len(l.AllowedEmails) > 0), nil
	}

	verdict := access.Evaluate(l, creds, now)
	if !verdict.Allowed {
		switch verdict.Reason {
		case access.ReasonExpired:
			return expired(), nil
		case access.ReasonQuotaExceeded:
			return quotaExceeded(), nil
		default:
			return denied(verdict.Reason), nil
		}
	}

	ok, err := e.store.RegisterVisit(ctx, code, now)
	if err != nil {
		return Outcome{}, err
	}

	if !ok {
		// Lost the race for the last quota slot.
		return quotaExceeded(), nil
	}

	e.recordVisit(ctx, l, creds, meta, now)
	e.dispatch(l, creds, meta, now)

	return resolved(l.DestinationURL), nil
}

// recordVisit appends the visit-log entry. The increment above is the
// authoritative record of the click, so an append failure does not
// undo it; it is logged for operators instead of being swallowed.
func (e *Engine) recordVisit(ctx context.Context, l *link.Link, creds access.Credentials, meta Meta, now time.Time) {
	visit := &link.Visit{
		ID:        uuid.NewString(),
		LinkCode:  l.Code,
		Timestamp: now,
		IPAddress: meta.ClientIP,
		UserAgent: meta.UserAgent,
		Email:     accessEmail(l, creds),
	}

	if _, err := e.visits.Append(ctx, visit); err != nil {
		e.logger.Error("visit recorded without log entry",
			zap.String("code", string(l.Code)),
			zap.Error(err),
		)
	}
}

// dispatch publishes the post-commit events: one analytics event for
// the visit and, when notifications are enabled and an owner email
// exists, one notification per recipient. Publish failures never
// affect the resolution outcome.
func (e *Engine) dispatch(l *link.Link, creds access.Credentials, meta Meta, now time.Time) {
	visited := &analytics.LinkVisitedEvent{
		Code:        string(l.Code),
		VisitedAt:   now,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
		AccessEmail: accessEmail(l, creds),
	}

	if err := e.publishVisited(visited); err != nil {
		e.logger.Error("failed to publish visit event",
			zap.String("code", string(l.Code)),
			zap.Error(err),
		)
	}

	if !l.NotificationsEnabled || l.OwnerEmail == "" {
		return
	}

	for _, recipient := range notify.Recipients(l.OwnerEmail, l.AllowedEmails) {
		event := &notify.Event{
			Recipient: recipient,
			Code:      string(l.Code),
			VisitedAt: now,
		}

		if err := e.publishNotification(event); err != nil {
			e.logger.Error("failed to publish notification event",
				zap.String("code", string(l.Code)),
				zap.String("recipient", recipient),
				zap.Error(err),
			)
		}
	}
}

// accessEmail returns the email to record for a visit: only set when
// the link is email-gated and the requester supplied one.
func accessEmail(l *link.Link, creds access.Credentials) string {
	if len(l.AllowedEmails) == 0 {
		return ""
	}

	return creds.Email
}
