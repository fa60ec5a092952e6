package resolve

import "github.com/VictorEZCodes/BouncerLink/internal/access"

// State is the terminal state of a resolution request.
type State string

const (
	// StateNotFound means the short code is unknown.
	StateNotFound State = "not_found"
	// StateExpired means the link's expiry has passed. Permanent.
	StateExpired State = "expired"
	// StateQuotaExceeded means the click limit is fully consumed.
	StateQuotaExceeded State = "quota_exceeded"
	// StateAccessChallengeRequired means the link is gated and no
	// credentials were supplied. The caller should prompt and resubmit.
	StateAccessChallengeRequired State = "access_challenge_required"
	// StateDenied means credentials were supplied and rejected.
	StateDenied State = "denied"
	// StateResolved means the visit was recorded and the destination
	// may be followed.
	StateResolved State = "resolved"
)

// Challenge describes which credentials a gated link requires.
type Challenge struct {
	NeedsAccessCode bool
	NeedsEmail      bool
}

// Outcome is the full result of a resolution. Every state is
// semantically distinct; callers must not collapse them into one
// generic failure.
type Outcome struct {
	State          State
	Reason         access.Reason // set only for StateDenied
	DestinationURL string        // set only for StateResolved
	Challenge      Challenge     // set only for StateAccessChallengeRequired
}

func notFound() Outcome {
	return Outcome{State: StateNotFound}
}

func expired() Outcome {
	return Outcome{State: StateExpired}
}

func quotaExceeded() Outcome {
	return Outcome{State: StateQuotaExceeded}
}

func challengeRequired(needsAccessCode, needsEmail bool) Outcome {
	return Outcome{
		State: StateAccessChallengeRequired,
		Challenge: Challenge{
			NeedsAccessCode: needsAccessCode,
			NeedsEmail:      needsEmail,
		},
	}
}

func denied(reason access.Reason) Outcome {
	return Outcome{State: StateDenied, Reason: reason}
}

func resolved(url string) Outcome {
	return Outcome{State: StateResolved, DestinationURL: url}
}
