package handlers

import (
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/analytics"
)

// CreateLinkRequest is the request body for creating a short link.
// Access controls are honored only for authenticated callers;
// anonymous links are stripped of them and expire after a fixed
// lifetime regardless of what the body says.
type CreateLinkRequest struct {
	Body struct {
		URL                  string     `doc:"The URL to shorten"                     example:"https://example.com/very/long/path" json:"url"`
		CustomCode           string     `doc:"Optional custom short code"             example:"my-link"                            json:"customCode,omitempty" required:"false"`
		ExpiresAt            *time.Time `doc:"Optional expiry timestamp"              json:"expiresAt,omitempty"                   required:"false"`
		AccessCode           string     `doc:"Optional access code gate"              json:"accessCode,omitempty"                  required:"false"`
		AllowedEmails        []string   `doc:"Optional allow-listed emails"           json:"allowedEmails,omitempty"               required:"false"`
		ClickLimit           int        `doc:"Optional click limit (0 = no limit)"    json:"clickLimit,omitempty"                  minimum:"0" required:"false"`
		NotificationsEnabled bool       `doc:"Notify the owner on each visit"         json:"notificationsEnabled,omitempty"        required:"false"`
	}
}

// CreateLinkResponse is the response for a successfully created link.
type CreateLinkResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body struct {
		Code           string     `doc:"The short code"     example:"abc123"                       json:"code"`
		ShortURL       string     `doc:"The full short URL" example:"http://localhost:8888/r/abc123" json:"shortUrl"`
		DestinationURL string     `doc:"The destination URL" json:"destinationUrl"`
		ExpiresAt      *time.Time `doc:"Expiry, if any"      json:"expiresAt,omitempty"`
	}
}

// RedirectRequest is the request for resolving a short link via GET.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// RedirectResponse redirects to the destination URL, or to the access
// challenge page when the link is gated.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"Redirect target" header:"Location"`
	}
}

// AccessRequest submits credentials for a gated link.
type AccessRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
	Body struct {
		AccessCode string `doc:"The link's access code"  json:"accessCode,omitempty" required:"false"`
		Email      string `doc:"The requester's email"   json:"email,omitempty"      required:"false"`
	}
}

// AccessResponse carries the destination URL after a successful
// credentialed resolution.
type AccessResponse struct {
	Body struct {
		URL string `doc:"The destination URL" json:"url"`
	}
}

// ChallengeRequest asks which credentials a gated link requires.
type ChallengeRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// ChallengeResponse describes the inputs the access form must prompt
// for.
type ChallengeResponse struct {
	Body struct {
		RequiresAccessCode bool `json:"requiresAccessCode"`
		RequiresEmail      bool `json:"requiresEmail"`
	}
}

// AnalyticsRequest fetches visit statistics for a link.
type AnalyticsRequest struct {
	Code string `doc:"The short code"                                 path:"code"`
	Mode string `doc:"Unique visitor mode"  enum:"client,email"       query:"mode" required:"false"`
}

// AnalyticsResponse carries the visit statistics. Details are present
// only for the link's owner.
type AnalyticsResponse struct {
	Body struct {
		TotalVisits     int64              `json:"totalVisits"`
		IsAuthenticated bool               `json:"isAuthenticated"`
		Details         *analytics.Summary `json:"details,omitempty"`
	}
}

// ListLinksResponse lists the caller's links, newest first.
type ListLinksResponse struct {
	Body struct {
		Links []LinkItem `json:"links"`
	}
}

// LinkItem is one row in the link listing.
type LinkItem struct {
	Code           string     `json:"code"`
	DestinationURL string     `json:"destinationUrl"`
	Visits         int64      `json:"visits"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	LastVisitedAt  *time.Time `json:"lastVisitedAt,omitempty"`
}
