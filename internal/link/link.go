package link

import "time"

// Code represents a short link code.
type Code string

// NoLimit marks a link without a click limit.
const NoLimit = 0

// Link represents a shortened, optionally gated link.
type Link struct {
	Code                 Code
	DestinationURL       string
	OwnerID              string // empty for anonymous links
	OwnerEmail           string
	CreatedAt            time.Time
	ExpiresAt            *time.Time
	AccessCode           string // empty means no access code required
	AllowedEmails        []string
	ClickLimit           int // NoLimit when unset
	CurrentClicks        int
	Visits               int64
	LastVisitedAt        *time.Time
	NotificationsEnabled bool
}

// Gated reports whether resolving the link requires credentials.
func (l *Link) Gated() bool {
	return l.AccessCode != "" || len(l.AllowedEmails) > 0
}

// ExpiredAt reports whether the link is expired at the given instant.
func (l *Link) ExpiredAt(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// QuotaReached reports whether the click limit has been consumed.
func (l *Link) QuotaReached() bool {
	return l.ClickLimit != NoLimit && l.CurrentClicks >= l.ClickLimit
}

// AllowsEmail reports whether email is on the allow list (exact match).
func (l *Link) AllowsEmail(email string) bool {
	for _, allowed := range l.AllowedEmails {
		if allowed == email {
			return true
		}
	}

	return false
}

// Visit is one recorded, authorized access of a link.
// Entries are append-only and never updated.
type Visit struct {
	ID        string
	LinkCode  Code
	Timestamp time.Time
	IPAddress string // best-effort, may be empty
	UserAgent string
	Email     string // set only when the access path was email-gated
}
