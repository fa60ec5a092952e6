// Package notify delivers access notifications for gated links.
//
// Notification is fire-and-forget relative to visit recording: events
// are published after the state update commits, and delivery failures
// are logged and dropped, never surfaced to the resolving caller.
package notify

import (
	"context"
	"time"
)

// TopicNotificationRequested carries one event per recipient per
// resolved visit.
const TopicNotificationRequested = "notification.requested"

// Event asks for one notification email to one recipient.
type Event struct {
	Recipient string    `json:"recipient"`
	Code      string    `json:"code"`
	VisitedAt time.Time `json:"visitedAt"`
}

// Sender delivers a single notification. Implementations must bound
// their own delivery time.
type Sender interface {
	Send(ctx context.Context, event *Event) error
}

// Recipients builds the notification fan-out for a resolved visit:
// the link owner plus, on email-gated links, every allow-listed
// email. Each recipient appears at most once per visit.
func Recipients(ownerEmail string, allowedEmails []string) []string {
	seen := make(map[string]struct{}, len(allowedEmails)+1)
	recipients := make([]string, 0, len(allowedEmails)+1)

	add := func(email string) {
		if email == "" {
			return
		}

		if _, ok := seen[email]; ok {
			return
		}

		seen[email] = struct{}{}
		recipients = append(recipients, email)
	}

	add(ownerEmail)

	for _, email := range allowedEmails {
		add(email)
	}

	return recipients
}
