package analytics

import "time"

const (
	TopicLinkCreated = "link.created"
	TopicLinkVisited = "link.visited"
)

// LinkCreatedEvent is emitted when a short link is created.
type LinkCreatedEvent struct {
	Code           string     `json:"code"`
	DestinationURL string     `json:"destinationUrl"`
	OwnerID        string     `json:"ownerId,omitempty"`
	Anonymous      bool       `json:"anonymous"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	ClientIP       string     `json:"clientIp"`
	UserAgent      string     `json:"userAgent"`
}

// LinkVisitedEvent is emitted for every resolved visit.
type LinkVisitedEvent struct {
	Code        string    `json:"code"`
	VisitedAt   time.Time `json:"visitedAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
	AccessEmail string    `json:"accessEmail,omitempty"`
}
