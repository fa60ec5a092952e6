// Package access decides whether a requester may pass a link's gate.
package access

import (
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/link"
)

// Reason explains why access was denied.
type Reason string

const (
	ReasonExpired            Reason = "expired"
	ReasonQuotaExceeded      Reason = "quota_exceeded"
	ReasonInvalidAccessCode  Reason = "invalid_access_code"
	ReasonEmailNotAuthorized Reason = "email_not_authorized"
)

// Credentials are the secrets a requester supplied with a resolution.
type Credentials struct {
	AccessCode string
	Email      string
}

// Empty reports whether no credentials were supplied at all.
func (c Credentials) Empty() bool {
	return c.AccessCode == "" && c.Email == ""
}

// Verdict is the evaluator's allow/deny decision.
type Verdict struct {
	Allowed bool
	Reason  Reason // set only when denied
}

func allow() Verdict {
	return Verdict{Allowed: true}
}

func deny(reason Reason) Verdict {
	return Verdict{Reason: reason}
}

// Evaluate checks the supplied credentials against a link snapshot.
// Checks run in a fixed order and the first failing one wins:
// expiry, click quota, access code, allowed emails. The access code
// and email gates are independent; a link may configure either or
// both, and an unconfigured gate is skipped entirely.
func Evaluate(l *link.Link, creds Credentials, now time.Time) Verdict {
	if l.ExpiredAt(now) {
		return deny(ReasonExpired)
	}

	if l.QuotaReached() {
		return deny(ReasonQuotaExceeded)
	}

	if l.AccessCode != "" && creds.AccessCode != l.AccessCode {
		return deny(ReasonInvalidAccessCode)
	}

	if len(l.AllowedEmails) > 0 {
		if creds.Email == "" || !l.AllowsEmail(creds.Email) {
			return deny(ReasonEmailNotAuthorized)
		}
	}

	return allow()
}
