// Package analytics derives visit statistics from the visit log.
// Aggregation is read-only and fully decoupled from the write path.
package analytics

import (
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/link"
)

// UniqueMode selects how unique visitors are counted. The two modes
// are deliberately separate metrics; callers pick one explicitly.
type UniqueMode string

const (
	// UniqueByClient counts distinct (IP, user-agent) pairs.
	UniqueByClient UniqueMode = "client"
	// UniqueByEmail counts distinct non-empty access emails.
	UniqueByEmail UniqueMode = "email"
)

// EmailStatus reports whether an allow-listed email has accessed the
// link at least once.
type EmailStatus struct {
	Email    string `json:"email"`
	Accessed bool   `json:"accessed"`
}

// RecentVisit is one visit-log entry in a summary, newest first.
type RecentVisit struct {
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Email     string    `json:"email,omitempty"`
}

// Summary aggregates a link's visit history.
type Summary struct {
	TotalVisits    int64         `json:"totalVisits"`
	UniqueVisitors int           `json:"uniqueVisitors"`
	UniqueMode     UniqueMode    `json:"uniqueMode"`
	ClickLimit     int           `json:"clickLimit"` // link.NoLimit when unset
	CurrentClicks  int           `json:"currentClicks"`
	LastVisitedAt  *time.Time    `json:"lastVisitedAt,omitempty"`
	RecentVisits   []RecentVisit `json:"recentVisits"`
	AllowedEmails  []EmailStatus `json:"allowedEmails"`
}

// Summarize builds a Summary from a link and its visit-log tail.
// Visits are expected newest first, as returned by
// link.VisitLog.ListByLink. A link with zero visits yields zero
// counts and empty collections.
func Summarize(l *link.Link, visits []*link.Visit, mode UniqueMode, recentN int) *Summary {
	summary := &Summary{
		TotalVisits:    l.Visits,
		UniqueVisitors: countUnique(visits, mode),
		UniqueMode:     mode,
		ClickLimit:     l.ClickLimit,
		CurrentClicks:  l.CurrentClicks,
		LastVisitedAt:  l.LastVisitedAt,
		RecentVisits:   make([]RecentVisit, 0, recentN),
		AllowedEmails:  emailStatuses(l.AllowedEmails, visits),
	}

	for _, v := range visits {
		if len(summary.RecentVisits) >= recentN {
			break
		}

		summary.RecentVisits = append(summary.RecentVisits, RecentVisit{
			Timestamp: v.Timestamp,
			IPAddress: v.IPAddress,
			UserAgent: v.UserAgent,
			Email:     v.Email,
		})
	}

	return summary
}

func countUnique(visits []*link.Visit, mode UniqueMode) int {
	seen := make(map[string]struct{}, len(visits))

	for _, v := range visits {
		var key string

		switch mode {
		case UniqueByEmail:
			if v.Email == "" {
				continue
			}

			key = v.Email
		default:
			key = v.IPAddress + "|" + v.UserAgent
		}

		seen[key] = struct{}{}
	}

	return len(seen)
}

func emailStatuses(allowed []string, visits []*link.Visit) []EmailStatus {
	accessed := make(map[string]struct{})

	for _, v := range visits {
		if v.Email != "" {
			accessed[v.Email] = struct{}{}
		}
	}

	statuses := make([]EmailStatus, 0, len(allowed))

	for _, email := range allowed {
		_, ok := accessed[email]
		statuses = append(statuses, EmailStatus{Email: email, Accessed: ok})
	}

	return statuses
}
