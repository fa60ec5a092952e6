package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/access"
	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/VictorEZCodes/BouncerLink/internal/resolve"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// ResolveHandler maps resolution outcomes onto the HTTP surface. The
// five failure categories stay distinct: not found (404), expired
// (410), quota exceeded (403), challenge required (303 to the access
// form on GET, 401 on POST), and denied (403 with the reason).
type ResolveHandler struct {
	engine *resolve.Engine
	store  link.Store
	logger *zap.Logger
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(engine *resolve.Engine, store link.Store, logger *zap.Logger) *ResolveHandler {
	return &ResolveHandler{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// Redirect resolves a short code with no credentials. Ungated links
// redirect straight to their destination; gated ones bounce to the
// access challenge form.
func (h *ResolveHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	outcome, err := h.resolveOutcome(ctx, req.Code, access.Credentials{})
	if err != nil {
		return nil, err
	}

	resp := &RedirectResponse{}

	switch outcome.State {
	case resolve.StateResolved:
		resp.Status = http.StatusMovedPermanently
		resp.Headers.Location = outcome.DestinationURL

		return resp, nil
	case resolve.StateAccessChallengeRequired:
		resp.Status = http.StatusSeeOther
		resp.Headers.Location = fmt.Sprintf("/access/%s", req.Code)

		return resp, nil
	default:
		return nil, outcomeError(outcome)
	}
}

// SubmitAccess resolves a gated short code with supplied credentials
// and returns the destination URL on success.
func (h *ResolveHandler) SubmitAccess(ctx context.Context, req *AccessRequest) (*AccessResponse, error) {
	creds := access.Credentials{
		AccessCode: req.Body.AccessCode,
		Email:      req.Body.Email,
	}

	outcome, err := h.resolveOutcome(ctx, req.Code, creds)
	if err != nil {
		return nil, err
	}

	if outcome.State != resolve.StateResolved {
		return nil, outcomeError(outcome)
	}

	resp := &AccessResponse{}
	resp.Body.URL = outcome.DestinationURL

	return resp, nil
}

// Challenge reports which credentials a gated link requires, for the
// access form. It only reads link configuration and never counts a
// visit.
func (h *ResolveHandler) Challenge(ctx context.Context, req *ChallengeRequest) (*ChallengeResponse, error) {
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

	if l.ExpiredAt(time.Now()) {
		return nil, huma.Error410Gone("link expired")
	}

	resp := &ChallengeResponse{}
	resp.Body.RequiresAccessCode = l.AccessCode != ""
	resp.Body.RequiresEmail = len(l.AllowedEmails) > 0

	return resp, nil
}

func (h *ResolveHandler) resolveOutcome(ctx context.Context, code string, creds access.Credentials) (resolve.Outcome, error) {
	meta := RequestMetaFromContext(ctx)

	outcome, err := h.engine.Resolve(ctx, link.Code(code), creds, resolve.Meta{
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	})
	if err != nil {
		h.logger.Error("resolution failed",
			zap.String("code", code),
			zap.Error(err),
		)

		if errors.Is(err, link.ErrStoreUnavailable) {
			return resolve.Outcome{}, huma.Error503ServiceUnavailable("store unavailable, retry later")
		}

		return resolve.Outcome{}, huma.Error500InternalServerError("failed to resolve link")
	}

	return outcome, nil
}

// outcomeError translates every non-resolved terminal state into a
// distinct HTTP error.
func outcomeError(outcome resolve.Outcome) error {
	switch outcome.State {
	case resolve.StateNotFound:
		return huma.Error404NotFound("link not found")
	case resolve.StateExpired:
		return huma.Error410Gone("link expired")
	case resolve.StateQuotaExceeded:
		return huma.Error403Forbidden("click limit reached")
	case resolve.StateAccessChallengeRequired:
		return huma.Error401Unauthorized("credentials required")
	case resolve.StateDenied:
		switch outcome.Reason {
		case access.ReasonInvalidAccessCode:
			return huma.Error403Forbidden("invalid access code")
		case access.ReasonEmailNotAuthorized:
			return huma.Error403Forbidden("email not authorized")
		default:
			return huma.Error403Forbidden("access denied")
		}
	default:
		return huma.Error500InternalServerError("unexpected resolution state")
	}
}
